package lifecycle

import (
	"context"

	"github.com/UnendingLoop/AccountStore/internal/images"
	"github.com/UnendingLoop/AccountStore/internal/model"
	"github.com/wb-go/wbf/retry"
)

// MOCK REPOSITORY

type mockRepo struct {
	createListingFn      func(ctx context.Context, l *model.Listing) error
	createListingImageFn func(ctx context.Context, img *model.ListingImage) error
	getFn                func(ctx context.Context, id string) (*model.Listing, error)
	getListFn            func(ctx context.Context, req *model.ListRequest) ([]model.Listing, error)
	updateFn             func(ctx context.Context, id string, upd *model.ListingUpdate) error
	imageRefsFn          func(ctx context.Context, id string) ([]string, error)
	deleteImagesFn       func(ctx context.Context, id string) error
	deleteListingFn      func(ctx context.Context, id string) error
	allImageRefsFn       func(ctx context.Context) ([]string, error)
}

func (m *mockRepo) CreateListing(ctx context.Context, l *model.Listing) error {
	return m.createListingFn(ctx, l)
}

func (m *mockRepo) CreateListingImage(ctx context.Context, img *model.ListingImage) error {
	return m.createListingImageFn(ctx, img)
}

func (m *mockRepo) Get(ctx context.Context, id string) (*model.Listing, error) {
	return m.getFn(ctx, id)
}

func (m *mockRepo) GetList(ctx context.Context, req *model.ListRequest) ([]model.Listing, error) {
	return m.getListFn(ctx, req)
}

func (m *mockRepo) Update(ctx context.Context, id string, upd *model.ListingUpdate) error {
	return m.updateFn(ctx, id, upd)
}

func (m *mockRepo) ImageRefs(ctx context.Context, id string) ([]string, error) {
	return m.imageRefsFn(ctx, id)
}

func (m *mockRepo) DeleteImages(ctx context.Context, id string) error {
	return m.deleteImagesFn(ctx, id)
}

func (m *mockRepo) DeleteListing(ctx context.Context, id string) error {
	return m.deleteListingFn(ctx, id)
}

func (m *mockRepo) AllImageRefs(ctx context.Context) ([]string, error) {
	return m.allImageRefsFn(ctx)
}

// MOCK UPLOADER

type mockUploader struct {
	ingestFn func(ctx context.Context, data []byte, name string) (*images.StoredImage, error)
}

func (m *mockUploader) Ingest(ctx context.Context, data []byte, name string) (*images.StoredImage, error) {
	return m.ingestFn(ctx, data, name)
}

// MOCK BLOB DELETER

type mockBlobDeleter struct {
	deleteFn func(ctx context.Context, publicRef string) (string, error)
}

func (m *mockBlobDeleter) Delete(ctx context.Context, publicRef string) (string, error) {
	return m.deleteFn(ctx, publicRef)
}

// MOCK PUBLISHER

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	if m.sendFn == nil {
		return nil
	}
	return m.sendFn(ctx, s, key, v)
}
