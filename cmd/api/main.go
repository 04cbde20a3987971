// Package main (in api-subfolder) provides launch of the whole application except the sweeper
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/AccountStore/internal/auth"
	"github.com/UnendingLoop/AccountStore/internal/blobkey"
	"github.com/UnendingLoop/AccountStore/internal/events"
	"github.com/UnendingLoop/AccountStore/internal/imageproc"
	"github.com/UnendingLoop/AccountStore/internal/images"
	"github.com/UnendingLoop/AccountStore/internal/lifecycle"
	"github.com/UnendingLoop/AccountStore/internal/mwlogger"
	"github.com/UnendingLoop/AccountStore/internal/repository"
	"github.com/UnendingLoop/AccountStore/internal/storage"
	"github.com/UnendingLoop/AccountStore/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	err := zlog.SetLevel("info")
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключитсья к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// накатываем миграцию
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)

	// подключиться к хранилищу
	strg := storage.NewBlobStorage(appConfig, 10*time.Second)
	// создаем экземпляр репо
	repo := repository.NewPostgresListingRepo(dbConn)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	events.WaitKafkaReady(broker)
	// подключиться к кафке как продюсер
	topic := appConfig.GetString("KAFKA_TOPIC")
	events.InitTopics(ctx, broker, 10*time.Second, topic)
	pub := wbfkafka.NewProducer([]string{broker}, topic)

	// собираем сервисы: картинки и жизненный цикл лотов
	resolver := blobkey.NewResolver(strg.Bucket())
	imageSvc := images.NewService(strg, imageproc.Normalize, resolver)
	var imgSvc ImageAPIService = imageSvc
	var lstSvc ListingAPIService = lifecycle.NewService(appConfig, repo, imageSvc, imageSvc, pub)

	// гейт для админских ручек
	caller := auth.NewTokenCapability(appConfig)
	admin := func(next func(ctx *ginext.Context)) func(ctx *ginext.Context) {
		return auth.RequireAdmin(caller, next)
	}

	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewStoreHandler(imgSvc, lstSvc, caller)
	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.GET("/api/listings", handlers.GetAllListings) // публичный список с пагинацией и сортировкой
	engine.GET("/api/listings/:id", handlers.GetListing) // публичная карточка лота
	engine.POST("/api/images", admin(handlers.UploadImage))
	engine.POST("/api/images/delete", admin(handlers.DeleteImage))
	engine.POST("/api/listings/batch", admin(handlers.CreateBatch))
	engine.POST("/api/listings/delete", admin(handlers.DeleteListings))
	engine.PATCH("/api/listings/:id", admin(handlers.UpdateListing))
	engine.DELETE("/api/listings/:id", admin(handlers.DeleteListing))

	srv := &http.Server{
		Addr:    ":" + appConfig.GetString("APP_PORT"),
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для запуска грейсфул закрытия соединений бд и кафки
	<-ctx.Done()

	shutdown(pub, dbConn)
	log.Println("Exiting app...")
}

func shutdown(pub *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-producer:", err)
	}
	log.Println("Kafka-producer connection closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
