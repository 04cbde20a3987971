package blobkey

import (
	"testing"

	"github.com/UnendingLoop/AccountStore/internal/model"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver("account-images")

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "plain key after bucket",
			ref:  "http://minio:9000/account-images/1700000000-ab12cd3-photo.jpg",
			want: "1700000000-ab12cd3-photo.jpg",
		},
		{
			name: "nested key joined by slash",
			ref:  "http://minio:9000/account-images/2024/05/shot.jpg",
			want: "2024/05/shot.jpg",
		},
		{
			name: "url-encoded key",
			ref:  "http://minio:9000/account-images/my%20photo%281%29.jpg",
			want: "my photo(1).jpg",
		},
		{
			name: "bucket deeper in path",
			ref:  "https://cdn.example.com/storage/v1/object/public/account-images/acc.jpg",
			want: "acc.jpg",
		},
		{
			name: "fallback to last segment with image extension",
			ref:  "https://cdn.example.com/files/legacy-shot.PNG",
			want: "legacy-shot.PNG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.ref)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_Resolve_Fails(t *testing.T) {
	r := NewResolver("account-images")

	for _, ref := range []string{
		"",
		"not a url at all",
		"http://minio:9000/other-bucket/readme.txt", // no bucket segment, no image extension
		"http://minio:9000/account-images",          // bucket is the last segment, nothing after it
	} {
		t.Run(ref, func(t *testing.T) {
			_, err := r.Resolve(ref)
			require.ErrorIs(t, err, model.ErrNotResolvable)
		})
	}
}
