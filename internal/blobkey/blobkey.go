// Package blobkey maps public image URLs back to object-storage keys.
// Это единственное место в приложении, где ключи хранилища видны снаружи
// резолвера - все остальные слои работают только с публичными URL.
package blobkey

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/UnendingLoop/AccountStore/internal/model"
)

// image extensions accepted by the fallback rule
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type Resolver struct {
	bucket string
}

func NewResolver(bucket string) Resolver {
	return Resolver{bucket: bucket}
}

// Resolve extracts the storage key from a public reference.
// Primary rule: the key is everything after the bucket path segment, decoded
// and re-joined with "/". Fallback: a final path segment with a known image
// extension. Anything else fails with ErrNotResolvable - a guessed key would
// either orphan a blob or delete an unrelated one, both are worse than an
// error the caller can see.
func (r Resolver) Resolve(publicRef string) (string, error) {
	if publicRef == "" {
		return "", fmt.Errorf("%w: empty reference", model.ErrNotResolvable)
	}

	u, err := url.Parse(publicRef)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not a valid URL", model.ErrNotResolvable, publicRef)
	}

	parts := make([]string, 0, 8)
	for _, p := range strings.Split(u.EscapedPath(), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	// ищем сегмент бакета - все что после него и есть ключ
	for i, p := range parts {
		if p != r.bucket || i == len(parts)-1 {
			continue
		}
		key, err := decodeSegments(parts[i+1:])
		if err != nil {
			return "", fmt.Errorf("%w: undecodable path in %q", model.ErrNotResolvable, publicRef)
		}
		return key, nil
	}

	// запасной вариант: последний сегмент с расширением картинки
	if len(parts) > 0 {
		last := parts[len(parts)-1]
		decoded, err := url.PathUnescape(last)
		if err == nil {
			if dot := strings.LastIndex(decoded, "."); dot >= 0 && imageExtensions[strings.ToLower(decoded[dot:])] {
				return decoded, nil
			}
		}
	}

	return "", fmt.Errorf("%w: no bucket segment %q in %q", model.ErrNotResolvable, r.bucket, publicRef)
}

func decodeSegments(segments []string) (string, error) {
	decoded := make([]string, 0, len(segments))
	for _, s := range segments {
		d, err := url.PathUnescape(s)
		if err != nil {
			return "", err
		}
		decoded = append(decoded, d)
	}
	return strings.Join(decoded, "/"), nil
}
