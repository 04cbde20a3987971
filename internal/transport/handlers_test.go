package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnendingLoop/AccountStore/internal/auth"
	"github.com/UnendingLoop/AccountStore/internal/images"
	"github.com/UnendingLoop/AccountStore/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

func TestStoreHandler_Ping(t *testing.T) {
	r := gin.New()
	h := NewStoreHandler(nil, nil, nil)

	r.GET("/ping", func(c *gin.Context) {
		h.SimplePinger((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "pong", body["message"])
}

func newMultipartRequest(t *testing.T, target string, fields map[string]string, files map[string][][]byte) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, contents := range files {
		for i, content := range contents {
			fw, err := w.CreateFormFile(name, name+"-"+string(rune('a'+i))+".jpg")
			require.NoError(t, err)
			_, err = fw.Write(content)
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// UPLOAD SINGLE IMAGE

func TestStoreHandler_UploadImage(t *testing.T) {
	tests := []struct {
		name       string
		req        *http.Request
		mock       *mockImageService
		wantStatus int
	}{
		{
			name: "success",
			req: newMultipartRequest(t, "/api/images", nil,
				map[string][][]byte{"file": {[]byte("img")}},
			),
			mock: &mockImageService{
				ingestFn: func(ctx context.Context, data []byte, name string) (*images.StoredImage, error) {
					require.Equal(t, []byte("img"), data)
					return &images.StoredImage{PublicURL: "http://minio:9000/account-images/1-abc-file.jpg", StoredName: "1-abc-file.jpg"}, nil
				},
			},
			wantStatus: 201,
		},
		{
			name:       "missing file",
			req:        newMultipartRequest(t, "/api/images", map[string]string{"other": "x"}, nil),
			mock:       &mockImageService{},
			wantStatus: 400,
		},
		{
			name: "storage conflict",
			req: newMultipartRequest(t, "/api/images", nil,
				map[string][][]byte{"file": {[]byte("img")}},
			),
			mock: &mockImageService{
				ingestFn: func(ctx context.Context, data []byte, name string) (*images.StoredImage, error) {
					return nil, model.ErrWriteConflict
				},
			},
			wantStatus: 409,
		},
		{
			name: "storage down",
			req: newMultipartRequest(t, "/api/images", nil,
				map[string][][]byte{"file": {[]byte("img")}},
			),
			mock: &mockImageService{
				ingestFn: func(ctx context.Context, data []byte, name string) (*images.StoredImage, error) {
					return nil, model.ErrStoreDown
				},
			},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewStoreHandler(tt.mock, nil, allowAll{})

			r.POST("/api/images", func(c *gin.Context) {
				h.UploadImage((*ginext.Context)(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req)

			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

// DELETE SINGLE IMAGE

func TestStoreHandler_DeleteImage(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mock       *mockImageService
		wantStatus int
	}{
		{
			name: "success",
			body: `{"image_url":"http://minio:9000/account-images/1-abc-file.jpg"}`,
			mock: &mockImageService{
				deleteFn: func(ctx context.Context, publicRef string) (string, error) {
					return "1-abc-file.jpg", nil
				},
			},
			wantStatus: 200,
		},
		{
			name:       "missing url",
			body:       `{}`,
			mock:       &mockImageService{},
			wantStatus: 400,
		},
		{
			name: "not resolvable",
			body: `{"image_url":"https://elsewhere.example.com/pic.bin"}`,
			mock: &mockImageService{
				deleteFn: func(ctx context.Context, publicRef string) (string, error) {
					return "", model.ErrNotResolvable
				},
			},
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewStoreHandler(tt.mock, nil, allowAll{})

			r.POST("/api/images/delete", func(c *gin.Context) {
				h.DeleteImage((*ginext.Context)(c))
			})

			req := httptest.NewRequest(http.MethodPost, "/api/images/delete", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

// BATCH CREATE

func TestStoreHandler_CreateBatch(t *testing.T) {
	tests := []struct {
		name       string
		req        *http.Request
		mock       *mockListingService
		wantStatus int
	}{
		{
			name: "success",
			req: newMultipartRequest(t, "/api/listings/batch",
				map[string]string{"prices": "52m - 54m", "main_acc": "holder"},
				map[string][][]byte{"images": {[]byte("one"), []byte("two")}},
			),
			mock: &mockListingService{
				createBatchFn: func(ctx context.Context, req *model.BatchCreateRequest, _ model.ProgressFunc) (*model.BatchResult, error) {
					require.Len(t, req.Images, 2)
					require.Len(t, req.Prices, 2)
					require.True(t, decimal.NewFromInt(52_000_000).Equal(req.Prices[0]))
					require.Equal(t, "holder", req.MainAcc)
					return &model.BatchResult{Created: 2}, nil
				},
			},
			wantStatus: 201,
		},
		{
			name: "no images",
			req: newMultipartRequest(t, "/api/listings/batch",
				map[string]string{"prices": "52m"}, nil,
			),
			mock:       &mockListingService{},
			wantStatus: 400,
		},
		{
			name: "bad price line",
			req: newMultipartRequest(t, "/api/listings/batch",
				map[string]string{"prices": "junk"},
				map[string][][]byte{"images": {[]byte("one")}},
			),
			mock:       &mockListingService{},
			wantStatus: 400,
		},
		{
			name: "validation rejected by service",
			req: newMultipartRequest(t, "/api/listings/batch",
				map[string]string{"prices": "52m"},
				map[string][][]byte{"images": {[]byte("one"), []byte("two")}},
			),
			mock: &mockListingService{
				createBatchFn: func(ctx context.Context, req *model.BatchCreateRequest, _ model.ProgressFunc) (*model.BatchResult, error) {
					return nil, model.ErrValidation
				},
			},
			wantStatus: 400,
		},
		{
			name: "entire batch failed",
			req: newMultipartRequest(t, "/api/listings/batch",
				map[string]string{"prices": "52m"},
				map[string][][]byte{"images": {[]byte("one")}},
			),
			mock: &mockListingService{
				createBatchFn: func(ctx context.Context, req *model.BatchCreateRequest, _ model.ProgressFunc) (*model.BatchResult, error) {
					return &model.BatchResult{Failed: 1, Items: []model.BatchItem{{Stage: model.StageUpload, Err: "minio down"}}}, model.ErrBatchFailed
				},
			},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewStoreHandler(nil, tt.mock, allowAll{})

			r.POST("/api/listings/batch", func(c *gin.Context) {
				h.CreateBatch((*ginext.Context)(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req)

			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

// DELETE LISTING

func TestStoreHandler_DeleteListing(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name       string
		mock       *mockListingService
		wantStatus int
	}{
		{
			name: "success",
			mock: &mockListingService{
				deleteFn: func(ctx context.Context, gotID string) *model.DeleteResult {
					require.Equal(t, id.String(), gotID)
					return &model.DeleteResult{ListingID: id, Deleted: true}
				},
			},
			wantStatus: 200,
		},
		{
			name: "not found",
			mock: &mockListingService{
				deleteFn: func(ctx context.Context, gotID string) *model.DeleteResult {
					return &model.DeleteResult{Stage: model.DeleteStageCollect, Err: model.ErrListingNotFound.Error()}
				},
			},
			wantStatus: 404,
		},
		{
			name: "blobs remaining",
			mock: &mockListingService{
				deleteFn: func(ctx context.Context, gotID string) *model.DeleteResult {
					return &model.DeleteResult{
						Stage:      model.DeleteStageBlobs,
						FailedRefs: []string{"http://minio:9000/account-images/1-abc-file.jpg"},
						Err:        model.ErrBlobsRemaining.Error(),
					}
				},
			},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewStoreHandler(nil, tt.mock, allowAll{})

			r.DELETE("/api/listings/:id", func(c *gin.Context) {
				h.DeleteListing((*ginext.Context)(c))
			})

			req := httptest.NewRequest(http.MethodDelete, "/api/listings/"+id.String(), nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestStoreHandler_DeleteListings_Bulk(t *testing.T) {
	mock := &mockListingService{
		deleteManyFn: func(ctx context.Context, ids []string) *model.BulkDeleteResult {
			require.Len(t, ids, 2)
			return &model.BulkDeleteResult{Deleted: 1, Failed: 1}
		},
	}

	r := gin.New()
	h := NewStoreHandler(nil, mock, allowAll{})
	r.POST("/api/listings/delete", func(c *gin.Context) {
		h.DeleteListings((*ginext.Context)(c))
	})

	body := `{"ids":["` + uuid.NewString() + `","` + uuid.NewString() + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/listings/delete", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)

	var res model.BulkDeleteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, 1, res.Deleted)
	require.Equal(t, 1, res.Failed)
}

// LISTING READS

func TestStoreHandler_GetAllListings_HolderHidden(t *testing.T) {
	mock := &mockListingService{
		getListFn: func(ctx context.Context, req *model.ListRequest) ([]model.Listing, error) {
			return []model.Listing{{ID: uuid.New(), MainAcc: "secret-holder"}}, nil
		},
	}

	tests := []struct {
		name       string
		caller     auth.Capability
		wantHolder string
	}{
		{name: "public caller", caller: denyAll{}, wantHolder: ""},
		{name: "admin caller", caller: allowAll{}, wantHolder: "secret-holder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewStoreHandler(nil, mock, tt.caller)
			r.GET("/api/listings", func(c *gin.Context) {
				h.GetAllListings((*ginext.Context)(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/api/listings?page=1&limit=10", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, 200, w.Code)

			var res []model.Listing
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			require.Len(t, res, 1)
			require.Equal(t, tt.wantHolder, res[0].MainAcc)
		})
	}
}

func TestStoreHandler_GetAllListings_BadQuery(t *testing.T) {
	r := gin.New()
	h := NewStoreHandler(nil, &mockListingService{}, denyAll{})
	r.GET("/api/listings", func(c *gin.Context) {
		h.GetAllListings((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/listings?page=abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 400, w.Code)
}

// UPDATE LISTING

func TestStoreHandler_UpdateListing(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mock       *mockListingService
		wantStatus int
	}{
		{
			name: "success",
			body: `{"price":"31500000","title":"renamed"}`,
			mock: &mockListingService{
				updateFn: func(ctx context.Context, id string, upd *model.ListingUpdate) error {
					require.NotNil(t, upd.Price)
					require.True(t, decimal.NewFromInt(31_500_000).Equal(*upd.Price))
					require.Equal(t, "renamed", *upd.Title)
					return nil
				},
			},
			wantStatus: 204,
		},
		{
			name:       "broken body",
			body:       `{"price":`,
			mock:       &mockListingService{},
			wantStatus: 400,
		},
		{
			name: "not found",
			body: `{"title":"renamed"}`,
			mock: &mockListingService{
				updateFn: func(ctx context.Context, id string, upd *model.ListingUpdate) error {
					return model.ErrListingNotFound
				},
			},
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewStoreHandler(nil, tt.mock, allowAll{})

			r.PATCH("/api/listings/:id", func(c *gin.Context) {
				h.UpdateListing((*ginext.Context)(c))
			})

			req := httptest.NewRequest(http.MethodPatch, "/api/listings/"+uuid.NewString(), bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

// ADMIN GATE

func TestRequireAdmin(t *testing.T) {
	gated := auth.RequireAdmin(denyAll{}, func(ctx *ginext.Context) {
		t.Fatal("handler must not run for a rejected caller")
	})

	r := gin.New()
	r.POST("/api/images", func(c *gin.Context) {
		gated((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/images", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, 403, w.Code)
}
