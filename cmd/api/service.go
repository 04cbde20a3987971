package main

import (
	"context"

	"github.com/UnendingLoop/AccountStore/internal/images"
	"github.com/UnendingLoop/AccountStore/internal/model"
)

type ImageAPIService interface {
	Ingest(ctx context.Context, data []byte, originalName string) (*images.StoredImage, error)
	Delete(ctx context.Context, publicRef string) (string, error)
}

type ListingAPIService interface {
	CreateBatch(ctx context.Context, req *model.BatchCreateRequest, progress model.ProgressFunc) (*model.BatchResult, error)
	Delete(ctx context.Context, id string) *model.DeleteResult
	DeleteMany(ctx context.Context, ids []string) *model.BulkDeleteResult
	Get(ctx context.Context, id string) (*model.Listing, error)
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Listing, error)
	Update(ctx context.Context, id string, upd *model.ListingUpdate) error
}
