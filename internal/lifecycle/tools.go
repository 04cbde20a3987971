package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/UnendingLoop/AccountStore/internal/model"
	"github.com/UnendingLoop/AccountStore/internal/mwlogger"
	"github.com/google/uuid"
)

func (s *Service) Get(ctx context.Context, id string) (*model.Listing, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := uuid.Validate(id); err != nil {
		return nil, model.ErrIncorrectID
	}

	res, err := s.repo.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrListingNotFound) {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch listing %q from DB", id))
		}
		return nil, err
	}

	return res, nil
}

func (s *Service) GetList(ctx context.Context, req *model.ListRequest) ([]model.Listing, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	validateQueryParams(req)

	res, err := s.repo.GetList(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch listings from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}

// Update patches listing metadata. Image columns are not reachable from here
// - ownership changes only through create/delete.
func (s *Service) Update(ctx context.Context, id string, upd *model.ListingUpdate) error {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}
	if upd.Price != nil && !upd.Price.IsPositive() {
		return fmt.Errorf("%w: %s", model.ErrBadPrice, upd.Price)
	}

	if err := s.repo.Update(ctx, id, upd); err != nil {
		if errors.Is(err, model.ErrRelational) {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to update listing %q in DB", id))
		}
		return err
	}

	return nil
}

func validateQueryParams(req *model.ListRequest) {
	// Обрабатываем пустые значения, присваиваем дефолты если надо
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 30
	}
	if req.Sort == "" {
		req.Sort = model.ByCreated
	}
	if req.Order == "" {
		req.Order = model.OrderDESC
	}

	// Валидируем непустое поле типа сортировки
	req.Sort = strings.ToLower(strings.TrimSpace(req.Sort))
	switch {
	case strings.Contains(req.Sort, model.ByPrice):
		req.Sort = "price"
	case strings.Contains(req.Sort, model.ByCreated):
		req.Sort = "created_at"
	default:
		req.Sort = "created_at" // по дефолту ставим сортировку по времени создания
	}

	// Валидируем непустой порядок
	req.Order = strings.ToLower(strings.TrimSpace(req.Order))
	switch {
	case strings.Contains(req.Order, model.OrderASC):
		req.Order = "ASC"
	case strings.Contains(req.Order, model.OrderDESC):
		req.Order = "DESC"
	default:
		req.Order = "DESC" // по дефолту ставим сортировку "новое-выше"
	}
}
