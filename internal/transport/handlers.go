// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"io"

	"github.com/UnendingLoop/AccountStore/internal/auth"
	"github.com/UnendingLoop/AccountStore/internal/images"
	"github.com/UnendingLoop/AccountStore/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type StoreHandler struct {
	images   ImageService
	listings ListingService
	caller   auth.Capability
}

type ImageService interface {
	Ingest(ctx context.Context, data []byte, originalName string) (*images.StoredImage, error) // загрузить один блоб в minio
	Delete(ctx context.Context, publicRef string) (string, error)                              // удалить один блоб по публичному URL
}

type ListingService interface {
	CreateBatch(ctx context.Context, req *model.BatchCreateRequest, progress model.ProgressFunc) (*model.BatchResult, error)
	Delete(ctx context.Context, id string) *model.DeleteResult
	DeleteMany(ctx context.Context, ids []string) *model.BulkDeleteResult
	Get(ctx context.Context, id string) (*model.Listing, error)
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Listing, error)
	Update(ctx context.Context, id string, upd *model.ListingUpdate) error
}

func NewStoreHandler(img ImageService, lst ListingService, caller auth.Capability) *StoreHandler {
	return &StoreHandler{
		images:   img,
		listings: lst,
		caller:   caller,
	}
}

func (h StoreHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h StoreHandler) UploadImage(ctx *ginext.Context) {
	data, name, err := readFormFile(ctx, "file")
	if err != nil {
		ctx.JSON(400, map[string]string{"error": model.ErrNoFile.Error()})
		return
	}

	res, err := h.images.Ingest(ctx.Request.Context(), data, name)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(201, map[string]any{
		"success":  true,
		"url":      res.PublicURL,
		"fileName": res.StoredName,
	})
}

type deleteImageRequest struct {
	ImageURL string `json:"image_url"`
}

func (h StoreHandler) DeleteImage(ctx *ginext.Context) {
	var req deleteImageRequest
	if err := ctx.BindJSON(&req); err != nil || req.ImageURL == "" {
		ctx.JSON(400, map[string]string{"error": "image_url is required"})
		return
	}

	key, err := h.images.Delete(ctx.Request.Context(), req.ImageURL)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, map[string]any{"success": true, "filename": key})
}

func (h StoreHandler) CreateBatch(ctx *ginext.Context) {
	req, err := parseBatchForm(ctx)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	res, err := h.listings.CreateBatch(ctx.Request.Context(), req, nil)
	if err != nil {
		// частичный провал это не ошибка всего запроса - ответ 201 с
		// постатейными итогами; код ошибки только при нуле успешных
		code := errorCodeDefiner(err)
		if res != nil {
			ctx.JSON(code, res)
			return
		}
		ctx.JSON(code, map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(201, res)
}

func (h StoreHandler) DeleteListing(ctx *ginext.Context) {
	res := h.listings.Delete(ctx.Request.Context(), ctx.Param("id"))
	if !res.Deleted {
		ctx.JSON(deleteCodeDefiner(res), res)
		return
	}

	ctx.JSON(200, res)
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (h StoreHandler) DeleteListings(ctx *ginext.Context) {
	var req bulkDeleteRequest
	if err := ctx.BindJSON(&req); err != nil || len(req.IDs) == 0 {
		ctx.JSON(400, map[string]string{"error": "ids is required"})
		return
	}

	ctx.JSON(200, h.listings.DeleteMany(ctx.Request.Context(), req.IDs))
}

func (h StoreHandler) GetListing(ctx *ginext.Context) {
	res, err := h.listings.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	h.blankHolder(ctx, res)
	ctx.JSON(200, res)
}

func (h StoreHandler) GetAllListings(ctx *ginext.Context) {
	var req model.ListRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.listings.GetList(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	for i := range res {
		h.blankHolder(ctx, &res[i])
	}
	ctx.JSON(200, res)
}

func (h StoreHandler) UpdateListing(ctx *ginext.Context) {
	var upd model.ListingUpdate
	if err := ctx.BindJSON(&upd); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse update body"})
		return
	}

	if err := h.listings.Update(ctx.Request.Context(), ctx.Param("id"), &upd); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.Status(204)
}

// blankHolder hides the holder label from everyone but admins.
func (h StoreHandler) blankHolder(ctx *ginext.Context, l *model.Listing) {
	if h.caller != nil && h.caller.Privileged(auth.FromRequest(ctx)) {
		return
	}
	l.MainAcc = ""
}

// parseBatchForm reads images[], prices and main_acc from multipart form-data.
func parseBatchForm(ctx *ginext.Context) (*model.BatchCreateRequest, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, model.ErrNoFile
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, model.ErrNoFile
	}

	prices, err := model.ParsePrices(ctx.PostForm("prices"))
	if err != nil {
		return nil, err
	}

	req := &model.BatchCreateRequest{
		Prices:  prices,
		MainAcc: ctx.PostForm("main_acc"),
	}

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, model.ErrNoFile
		}
		data, err := io.ReadAll(f)
		closeFileFlow(f)
		if err != nil {
			return nil, model.ErrNoFile
		}
		req.Images = append(req.Images, model.ImageUpload{Name: fh.Filename, Data: data})
	}

	return req, nil
}

func readFormFile(ctx *ginext.Context, field string) ([]byte, string, error) {
	file, header, err := ctx.Request.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer closeFileFlow(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}
