// Package sweeper removes bucket objects no listing references anymore.
// Такие объекты появляются штатно: жесткий гейт удаления лота сносит блобы
// до строк, а упавший батч оставляет загруженные картинки без строк.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/UnendingLoop/AccountStore/internal/model"
	"github.com/UnendingLoop/AccountStore/internal/storage/miniostorage"
	"github.com/wb-go/wbf/zlog"
)

type BlobLister interface {
	List(ctx context.Context, prefix string) ([]miniostorage.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

type KeyResolver interface {
	Resolve(publicRef string) (string, error)
}

type RefSource interface {
	AllImageRefs(ctx context.Context) ([]string, error)
}

// Sweeper deletes objects that are both unreferenced and older than the
// grace period. The grace period keeps it clear of in-flight batch creates
// whose rows are not inserted yet.
type Sweeper struct {
	storage  BlobLister
	repo     RefSource
	resolver KeyResolver
	grace    time.Duration
}

func New(storage BlobLister, repo RefSource, resolver KeyResolver, grace time.Duration) *Sweeper {
	return &Sweeper{
		storage:  storage,
		repo:     repo,
		resolver: resolver,
		grace:    grace,
	}
}

// Sweep runs one pass and reports how many orphans were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	refs, err := s.repo.AllImageRefs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: collecting references: %v", model.ErrRelational, err)
	}

	// публичные ссылки из базы переводим в ключи бакета; нерезолвящиеся
	// ссылки пропускаем - чужой хостинг не наша забота
	referenced := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		key, err := s.resolver.Resolve(ref)
		if err != nil {
			continue
		}
		referenced[key] = struct{}{}
	}

	objects, err := s.storage.List(ctx, "")
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-s.grace)
	removed := 0
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			// слишком свежий - возможно батч еще не дописал строки
			continue
		}

		if err := s.storage.Delete(ctx, obj.Key); err != nil {
			zlog.Logger.Error().Err(err).Msg(fmt.Sprintf("Sweeper failed to delete orphan %q", obj.Key))
			continue
		}
		removed++
	}

	return removed, nil
}

// Run sweeps on every tick until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Sweep(context.Background())
			if err != nil {
				zlog.Logger.Error().Err(err).Msg("Sweep pass failed")
				continue
			}
			if removed > 0 {
				zlog.Logger.Info().Msg(fmt.Sprintf("Sweep pass removed %d orphan blobs", removed))
			}
		}
	}
}
