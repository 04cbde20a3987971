// Package images provides the two leaf blob services: ingestion of uploaded
// images into the object store and deletion of stored blobs by public URL.
package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/UnendingLoop/AccountStore/internal/model"
	"github.com/UnendingLoop/AccountStore/internal/mwlogger"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BlobStorage - контракт для работы с хранилищем
type BlobStorage interface {
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// TranscodeFunc re-encodes an uploaded image into the storage format.
type TranscodeFunc func(r io.Reader) (io.Reader, int64, error)

// StoredImage - результат успешной загрузки
type StoredImage struct {
	PublicURL  string `json:"url"`
	StoredName string `json:"fileName"`
}

type Ingestor struct {
	storage   BlobStorage
	transcode TranscodeFunc
}

func NewIngestor(strg BlobStorage, transcode TranscodeFunc) *Ingestor {
	return &Ingestor{storage: strg, transcode: transcode}
}

const (
	defaultName   = "image.jpg"
	suffixLetters = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLen     = 7
	jpegType      = "image/jpeg"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)

// Ingest stores one image and returns its durable public reference.
// A transcoder failure is not fatal: the original bytes go to storage
// unmodified, so a weird-but-decodable-by-browsers upload still succeeds.
// Exactly one object is created per successful call, relational state is
// never touched here.
func (i *Ingestor) Ingest(ctx context.Context, data []byte, originalName string) (*StoredImage, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if len(data) == 0 {
		return nil, model.ErrNoFile
	}

	storedName := i.buildStoredName(originalName)

	// перекодируем, при ошибке молча не глотаем - логируем и кладем оригинал
	body, size, err := i.transcode(bytes.NewReader(data))
	if err != nil {
		logger.Warn().Err(err).Msg(fmt.Sprintf("Transcoding failed for %q, storing original bytes", originalName))
		body, size = bytes.NewReader(data), int64(len(data))
	}

	if err := i.storage.Put(ctx, storedName, size, jpegType, body); err != nil {
		logger.Error().Err(err).Msg("Failed to save image in Storage")
		return nil, err
	}

	return &StoredImage{
		PublicURL:  i.storage.PublicURL(storedName),
		StoredName: storedName,
	}, nil
}

// buildStoredName makes a name unique across concurrent calls:
// <unix-millis>-<random base36>-<sanitized base>.jpg. The extension is
// always .jpg because the transcoder re-encodes to a single format.
func (i *Ingestor) buildStoredName(originalName string) string {
	base := sanitizeName(originalName)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	return fmt.Sprintf("%d-%s-%s.jpg", time.Now().UnixMilli(), randSuffix(suffixLen), base)
}

// sanitizeName normalizes the upload name: decomposed form, diacritics
// stripped, everything outside [a-zA-Z0-9.-_] replaced with "_".
func sanitizeName(name string) string {
	if name == "" {
		name = defaultName
	}

	// transform.Chain не потокобезопасен - собираем цепочку на каждый вызов
	deaccent := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	clean, _, err := transform.String(deaccent, name)
	if err != nil {
		clean = name
	}

	return unsafeChars.ReplaceAllString(clean, "_")
}

func randSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixLetters[rand.Intn(len(suffixLetters))]
	}
	return string(b)
}
