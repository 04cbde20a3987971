package transport

import (
	"context"

	"github.com/UnendingLoop/AccountStore/internal/images"
	"github.com/UnendingLoop/AccountStore/internal/model"
	"github.com/gin-gonic/gin"
)

type mockImageService struct {
	ingestFn func(ctx context.Context, data []byte, name string) (*images.StoredImage, error)
	deleteFn func(ctx context.Context, publicRef string) (string, error)
}

func (m *mockImageService) Ingest(ctx context.Context, data []byte, name string) (*images.StoredImage, error) {
	return m.ingestFn(ctx, data, name)
}

func (m *mockImageService) Delete(ctx context.Context, publicRef string) (string, error) {
	return m.deleteFn(ctx, publicRef)
}

type mockListingService struct {
	createBatchFn func(ctx context.Context, req *model.BatchCreateRequest, progress model.ProgressFunc) (*model.BatchResult, error)
	deleteFn      func(ctx context.Context, id string) *model.DeleteResult
	deleteManyFn  func(ctx context.Context, ids []string) *model.BulkDeleteResult
	getFn         func(ctx context.Context, id string) (*model.Listing, error)
	getListFn     func(ctx context.Context, req *model.ListRequest) ([]model.Listing, error)
	updateFn      func(ctx context.Context, id string, upd *model.ListingUpdate) error
}

func (m *mockListingService) CreateBatch(ctx context.Context, req *model.BatchCreateRequest, progress model.ProgressFunc) (*model.BatchResult, error) {
	return m.createBatchFn(ctx, req, progress)
}

func (m *mockListingService) Delete(ctx context.Context, id string) *model.DeleteResult {
	return m.deleteFn(ctx, id)
}

func (m *mockListingService) DeleteMany(ctx context.Context, ids []string) *model.BulkDeleteResult {
	return m.deleteManyFn(ctx, ids)
}

func (m *mockListingService) Get(ctx context.Context, id string) (*model.Listing, error) {
	return m.getFn(ctx, id)
}

func (m *mockListingService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Listing, error) {
	return m.getListFn(ctx, req)
}

func (m *mockListingService) Update(ctx context.Context, id string, upd *model.ListingUpdate) error {
	return m.updateFn(ctx, id, upd)
}

// allowAll grants admin to every caller in tests that are not about auth.
type allowAll struct{}

func (allowAll) Privileged(string) bool { return true }

// denyAll is the opposite fixture.
type denyAll struct{}

func (denyAll) Privileged(string) bool { return false }

func init() {
	gin.SetMode(gin.TestMode)
}
