// Package main (in sweeper-subfolder) launches the background orphan-blob cleaner
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/AccountStore/internal/blobkey"
	"github.com/UnendingLoop/AccountStore/internal/repository"
	"github.com/UnendingLoop/AccountStore/internal/storage"
	"github.com/UnendingLoop/AccountStore/internal/sweeper"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

const (
	defaultInterval = 10 * time.Minute
	defaultGrace    = time.Hour
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
	if err := zlog.SetLevel("info"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// подключитсья к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// подключиться к хранилищу
	strg := storage.NewBlobStorage(appConfig, 10*time.Second)
	// создаем экземпляр репо
	repo := repository.NewPostgresListingRepo(dbConn)

	interval := durationOrDefault(appConfig.GetString("SWEEP_INTERVAL"), defaultInterval)
	grace := durationOrDefault(appConfig.GetString("SWEEP_GRACE"), defaultGrace)

	var swp OrphanSweeper = sweeper.New(strg, repo, blobkey.NewResolver(strg.Bucket()), grace)

	// Listening to interruptions through context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go swp.Run(ctx, interval)

	// Waiting for interruption to stop context to start Graceful shutdown
	<-ctx.Done()

	shutdown(dbConn)
	log.Println("Exiting sweeper...")
}

func durationOrDefault(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Cannot parse duration %q, falling back to %s", raw, def)
		return def
	}
	return d
}

func shutdown(dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
