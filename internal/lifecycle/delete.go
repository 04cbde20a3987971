package lifecycle

import (
	"context"
	"fmt"
	"slices"

	"github.com/UnendingLoop/AccountStore/internal/events"
	"github.com/UnendingLoop/AccountStore/internal/model"
	"github.com/UnendingLoop/AccountStore/internal/mwlogger"
	"github.com/google/uuid"
)

// Delete removes one listing together with every blob it owns.
// Порядок жесткий: сперва ВСЕ блобы, потом строки галереи, потом сам лот.
// Если хоть один блоб не удалился - к реляционной базе не прикасаемся:
// строку без блоба уже не починить ретраем, а блоб без строки подберет
// свипер. The result names every reference that failed so the operator can
// retry just those.
func (s *Service) Delete(ctx context.Context, id string) *model.DeleteResult {
	logger := mwlogger.LoggerFromContext(ctx)
	res := &model.DeleteResult{}

	listingID, err := uuid.Parse(id)
	if err != nil {
		res.Stage = model.DeleteStageCollect
		res.Err = model.ErrIncorrectID.Error()
		return res
	}
	res.ListingID = listingID

	// этап 1: собираем полный набор ссылок лота
	refs, err := s.collectRefs(ctx, id)
	if err != nil {
		res.Stage = model.DeleteStageCollect
		res.Err = err.Error()
		return res
	}

	// этап 2: пробуем удалить ВСЕ блобы, без раннего выхода - оператору
	// нужен полный список проблемных ссылок, а не первая попавшаяся
	var failedRefs []string
	for _, ref := range refs {
		if _, err := s.deleter.Delete(ctx, ref); err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to delete blob %q for listing %q", ref, id))
			failedRefs = append(failedRefs, ref)
		}
	}

	// этап 3: жесткий гейт - строки остаются нетронутыми пока висит
	// хоть один блоб
	if len(failedRefs) > 0 {
		res.Stage = model.DeleteStageBlobs
		res.FailedRefs = failedRefs
		res.Err = model.ErrBlobsRemaining.Error()
		return res
	}

	// этап 4: сначала дочерние строки галереи, потом сам лот
	if err := s.repo.DeleteImages(ctx, id); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to delete gallery rows for listing %q", id))
		res.Stage = model.DeleteStageImageRows
		res.Err = err.Error()
		return res
	}

	if err := s.repo.DeleteListing(ctx, id); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to delete listing row %q", id))
		res.Stage = model.DeleteStageListingRow
		res.Err = err.Error()
		return res
	}

	res.Deleted = true
	s.publish(ctx, events.Event{Type: events.TypeListingDeleted, ListingID: id})
	return res
}

// DeleteMany runs the full delete sequence for every id, sequentially - each
// id is independent, one failure never blocks the rest.
func (s *Service) DeleteMany(ctx context.Context, ids []string) *model.BulkDeleteResult {
	bulk := &model.BulkDeleteResult{Results: make([]model.DeleteResult, 0, len(ids))}

	for _, id := range ids {
		res := s.Delete(ctx, id)
		bulk.Results = append(bulk.Results, *res)

		if res.Deleted {
			bulk.Deleted++
		} else {
			bulk.Failed++
		}
	}

	return bulk
}

// collectRefs returns the de-duplicated union of the listing's primary
// reference and all its gallery references, gallery order preserved.
func (s *Service) collectRefs(ctx context.Context, id string) ([]string, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	gallery, err := s.repo.ImageRefs(ctx, id)
	if err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(gallery)+1)
	for _, ref := range gallery {
		if ref != "" && !slices.Contains(refs, ref) {
			refs = append(refs, ref)
		}
	}
	if l.ImageURL != "" && !slices.Contains(refs, l.ImageURL) {
		refs = append(refs, l.ImageURL)
	}

	return refs, nil
}
