// Package lifecycle provides business-logic for the app: it coordinates
// listing rows and their image blobs across the relational store and the
// object store. The two stores fail independently, so all cross-store
// consistency here is manufactured by ordering, not by transactions.
package lifecycle

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/UnendingLoop/AccountStore/internal/events"
	"github.com/UnendingLoop/AccountStore/internal/images"
	"github.com/UnendingLoop/AccountStore/internal/mwlogger"
	"github.com/UnendingLoop/AccountStore/internal/repository"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/retry"
)

// Uploader - контракт сервиса загрузки картинок
type Uploader interface {
	Ingest(ctx context.Context, data []byte, originalName string) (*images.StoredImage, error)
}

// BlobDeleter - контракт сервиса удаления блобов по публичному URL
type BlobDeleter interface {
	Delete(ctx context.Context, publicRef string) (string, error)
}

// EventPublisher - контракт для отправки событий жизненного цикла в очередь
type EventPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

type Service struct {
	repo        repository.ListingRepo
	uploader    Uploader
	deleter     BlobDeleter
	publisher   EventPublisher
	titlePrefix string
	defaultDesc string
}

// Стратегия ретрая отправки в очередь - можно потом вынести значения в конфиг/env
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

const (
	defaultTitlePrefix = "hieu_"
	defaultDescription = "Installments supported from 30% of the account price"
	titleSuffixLen     = 6
	titleLetters       = "0123456789abcdefghijklmnopqrstuvwxyz"
)

func NewService(cfg *config.Config, repo repository.ListingRepo, up Uploader, del BlobDeleter, pub EventPublisher) *Service {
	prefix := cfg.GetString("TITLE_PREFIX")
	if prefix == "" {
		prefix = defaultTitlePrefix
	}

	desc := cfg.GetString("DEFAULT_DESCRIPTION")
	if desc == "" {
		desc = defaultDescription
	}

	return &Service{
		repo:        repo,
		uploader:    up,
		deleter:     del,
		publisher:   pub,
		titlePrefix: prefix,
		defaultDesc: desc,
	}
}

// randomTitle - автогенерация имени лота: фиксированный префикс плюс
// случайный суффикс из [0-9a-z]
func (s *Service) randomTitle() string {
	b := make([]byte, titleSuffixLen)
	for i := range b {
		b[i] = titleLetters[rand.Intn(len(titleLetters))]
	}
	return s.titlePrefix + string(b)
}

// publish sends one lifecycle event to the queue, fire-and-forget: delivery
// failures are logged and never fail the operation that produced the event.
func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.publisher == nil {
		return
	}

	evt.At = time.Now().UTC()

	logger := mwlogger.LoggerFromContext(ctx)

	payload, err := json.Marshal(evt)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal lifecycle event")
		return
	}

	if err := s.publisher.SendWithRetry(ctx, retryStrategy, []byte(evt.Type), payload); err != nil {
		logger.Error().Err(err).Msg("Failed to publish lifecycle event to queue")
	}
}
