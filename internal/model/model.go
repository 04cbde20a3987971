// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCommon500       error = errors.New("something went wrong. Try again later")         // 500
	ErrIncorrectQuery  error = errors.New("incorrect query parameters")                    // 400
	ErrIncorrectID     error = errors.New("incorrect listing UUID")                        // 400
	ErrNoFile          error = errors.New("image file is required")                        // 400
	ErrValidation      error = errors.New("invalid batch input")                           // 400
	ErrBadPrice        error = errors.New("price is not a positive amount")                // 400
	ErrNotResolvable   error = errors.New("image URL cannot be resolved to a key")         // 400
	ErrWriteConflict   error = errors.New("object already exists in storage")              // 409
	ErrStoreDown       error = errors.New("image storage is unavailable")                  // 500
	ErrRelational      error = errors.New("database operation failed")                     // 500
	ErrListingNotFound error = errors.New("specified listing doesn't exist")               // 404
	ErrBatchFailed     error = errors.New("no items in the batch succeeded")               // 500
	ErrNotPrivileged   error = errors.New("operation requires admin capability")           // 403
	ErrBlobsRemaining  error = errors.New("some images could not be deleted from storage") // 500
)

//---------------------

// Listing - один лот на продажу. Основная картинка хранится прямо в строке,
// дополнительные - в listing_images.
type Listing struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	MainAcc     string          `json:"main_acc,omitempty"` // admin-only holder label
	ImageURL    string          `json:"image_url"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}

// ListingImage - дополнительная картинка лота, живет и умирает вместе с ним.
type ListingImage struct {
	ID        int64      `json:"id"`
	ListingID uuid.UUID  `json:"listing_id"`
	ImageURL  string     `json:"image_url"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ListingUpdate carries metadata-only changes. Image ownership never changes
// through the update path.
type ListingUpdate struct {
	Title       *string          `json:"title,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
	MainAcc     *string          `json:"main_acc,omitempty"`
}

//-------------------

type ListRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

const (
	ByCreated = "created"
	ByPrice   = "price"
	OrderASC  = "ascend"
	OrderDESC = "descend"
)

//-------------------

// ImageUpload - сырые байты одной картинки из multipart-формы.
type ImageUpload struct {
	Name string
	Data []byte
}

// ProgressFunc receives a monotonically increasing percentage while a batch
// runs. May be nil.
type ProgressFunc func(percent int)

// BatchCreateRequest pairs uploaded images with parsed prices by position.
// len(Prices) >= len(Images) is validated before any I/O happens.
type BatchCreateRequest struct {
	Images  []ImageUpload
	Prices  []decimal.Decimal
	MainAcc string
}

type BatchStage string

const (
	StageUpload BatchStage = "upload"
	StageInsert BatchStage = "insert"
)

// BatchItem is the per-image outcome of a batch create: either a created
// listing id, or the stage that failed plus the reason.
type BatchItem struct {
	Index     int        `json:"index"`
	ListingID uuid.UUID  `json:"listing_id,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
	Stage     BatchStage `json:"failed_stage,omitempty"`
	Err       string     `json:"error,omitempty"`
}

type BatchResult struct {
	Created int         `json:"created"`
	Failed  int         `json:"failed"`
	Items   []BatchItem `json:"items"`
}

//-------------------

type DeleteStage string

const (
	DeleteStageCollect    DeleteStage = "collect"
	DeleteStageBlobs      DeleteStage = "blobs"
	DeleteStageImageRows  DeleteStage = "image_rows"
	DeleteStageListingRow DeleteStage = "listing_row"
)

// DeleteResult reports one listing's delete sequence. FailedRefs names every
// public reference that could not be removed from storage so the operator can
// retry just those.
type DeleteResult struct {
	ListingID  uuid.UUID   `json:"listing_id"`
	Deleted    bool        `json:"deleted"`
	Stage      DeleteStage `json:"failed_stage,omitempty"`
	FailedRefs []string    `json:"failed_refs,omitempty"`
	Err        string      `json:"error,omitempty"`
}

type BulkDeleteResult struct {
	Deleted int            `json:"deleted"`
	Failed  int            `json:"failed"`
	Results []DeleteResult `json:"results"`
}
