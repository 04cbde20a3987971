package images

import (
	"context"
	"fmt"

	"github.com/UnendingLoop/AccountStore/internal/mwlogger"
)

// KeyResolver - контракт резолвера публичных URL в ключи хранилища
type KeyResolver interface {
	Resolve(publicRef string) (string, error)
}

type Deleter struct {
	storage  BlobStorage
	resolver KeyResolver
}

func NewDeleter(strg BlobStorage, resolver KeyResolver) *Deleter {
	return &Deleter{storage: strg, resolver: resolver}
}

// Delete resolves a public reference to its storage key and removes the
// object. ErrNotResolvable propagates to the caller untouched - deleting a
// guessed key is never acceptable.
func (d *Deleter) Delete(ctx context.Context, publicRef string) (string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	key, err := d.resolver.Resolve(publicRef)
	if err != nil {
		return "", err
	}

	if err := d.storage.Delete(ctx, key); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to delete blob %q from Storage", key))
		return "", err
	}

	return key, nil
}
