package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/UnendingLoop/AccountStore/internal/events"
	"github.com/UnendingLoop/AccountStore/internal/images"
	"github.com/UnendingLoop/AccountStore/internal/model"
	"github.com/UnendingLoop/AccountStore/internal/mwlogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Progress sub-ranges: uploads own 5..50, row inserts own 50..100.
const (
	progressStart    = 5
	progressUploaded = 50
	progressDone     = 100
)

// CreateBatch uploads every image in parallel, then inserts a listing (plus
// its gallery row) for every successful upload, pairing prices by position.
// One failing item never cancels or blocks the others; outcomes are collected
// per item. The call errors wholesale only when validation fails before any
// I/O, or when zero items succeeded.
func (s *Service) CreateBatch(ctx context.Context, req *model.BatchCreateRequest, progress model.ProgressFunc) (*model.BatchResult, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := validateBatch(req); err != nil {
		return nil, err
	}

	if progress == nil {
		progress = func(int) {}
	}

	s.publish(ctx, events.Event{Type: events.TypeBatchStarted, Count: len(req.Images)})

	result := &model.BatchResult{Items: make([]model.BatchItem, len(req.Images))}
	for i := range result.Items {
		result.Items[i].Index = i
	}

	// Этап 1: параллельная загрузка. Каждая горутина пишет только в свой
	// слот - агрегации до wg.Wait() нет, лок не нужен.
	uploads := make([]*images.StoredImage, len(req.Images))
	var wg sync.WaitGroup
	var uploadsDone atomic.Int64

	progress(progressStart)

	for i := range req.Images {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := s.uploader.Ingest(ctx, req.Images[i].Data, req.Images[i].Name)
			if err != nil {
				logger.Error().Err(err).Msg(fmt.Sprintf("Upload %d of %d failed", i+1, len(req.Images)))
				result.Items[i].Stage = model.StageUpload
				result.Items[i].Err = err.Error()
			} else {
				uploads[i] = res
				result.Items[i].ImageURL = res.PublicURL
			}

			n := int(uploadsDone.Add(1))
			progress(progressStart + n*(progressUploaded-progressStart)/len(req.Images))
		}()
	}
	wg.Wait()

	succeeded := make([]int, 0, len(req.Images))
	for i := range uploads {
		if uploads[i] != nil {
			succeeded = append(succeeded, i)
		}
	}

	if len(succeeded) == 0 {
		result.Failed = len(req.Images)
		return result, model.ErrBatchFailed
	}

	// Этап 2: вставка строк, тоже параллельно - строки независимы
	var insertsDone atomic.Int64
	progress(progressUploaded)

	for _, i := range succeeded {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()

			id, err := s.insertListing(ctx, req.Prices[i], req.MainAcc, uploads[i].PublicURL)
			if err != nil {
				result.Items[i].Stage = model.StageInsert
				result.Items[i].Err = err.Error()
			} else {
				result.Items[i].ListingID = id
			}

			n := int(insertsDone.Add(1))
			progress(progressUploaded + n*(progressDone-progressUploaded)/len(succeeded))
		}()
	}
	wg.Wait()

	for i := range result.Items {
		if result.Items[i].Err == "" {
			result.Created++
		} else {
			result.Failed++
		}
	}

	s.publish(ctx, events.Event{Type: events.TypeBatchFinished, Count: result.Created, Failed: result.Failed})

	if result.Created == 0 {
		return result, model.ErrBatchFailed
	}
	return result, nil
}

// insertListing creates the listing row and then its gallery row. When the
// gallery insert fails after the listing was created, the listing stays: its
// primary reference is valid and removing a sellable lot over a missing
// auxiliary row would be worse. The miss is logged, not hidden.
func (s *Service) insertListing(ctx context.Context, price decimal.Decimal, mainAcc, publicURL string) (uuid.UUID, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	l := &model.Listing{
		Title:       s.randomTitle(),
		Price:       price,
		Description: s.defaultDesc,
		MainAcc:     mainAcc,
		ImageURL:    publicURL,
	}

	if err := s.repo.CreateListing(ctx, l); err != nil {
		logger.Error().Err(err).Msg("Failed to create listing in DB")
		return uuid.Nil, err
	}

	img := &model.ListingImage{ListingID: l.ID, ImageURL: publicURL}
	if err := s.repo.CreateListingImage(ctx, img); err != nil {
		logger.Warn().Err(err).Msg(fmt.Sprintf("Gallery row insert failed for listing %q, keeping the listing", l.ID))
	}

	return l.ID, nil
}

func validateBatch(req *model.BatchCreateRequest) error {
	if len(req.Images) == 0 {
		return fmt.Errorf("%w: at least one image is required", model.ErrValidation)
	}
	if len(req.Prices) < len(req.Images) {
		return fmt.Errorf("%w: %d images but only %d prices", model.ErrValidation, len(req.Images), len(req.Prices))
	}
	for i, p := range req.Prices {
		if !p.IsPositive() {
			return fmt.Errorf("%w: price #%d", model.ErrBadPrice, i+1)
		}
	}
	return nil
}
