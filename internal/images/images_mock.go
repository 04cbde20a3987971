package images

import (
	"context"
	"io"
)

// MOCK STORAGE

type mockStorage struct {
	putFn       func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
	deleteFn    func(ctx context.Context, key string) error
	publicURLFn func(key string) string
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.deleteFn(ctx, key)
}

func (m *mockStorage) PublicURL(key string) string {
	if m.publicURLFn != nil {
		return m.publicURLFn(key)
	}
	return "http://minio:9000/account-images/" + key
}

// MOCK RESOLVER

type mockResolver struct {
	resolveFn func(publicRef string) (string, error)
}

func (m *mockResolver) Resolve(publicRef string) (string, error) {
	return m.resolveFn(publicRef)
}
