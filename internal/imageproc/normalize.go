// Package imageproc re-encodes uploaded images into the single storage format
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

const (
	// MaxSide - ограничивающая рамка: картинка вписывается в 1920x1920
	// с сохранением пропорций, маленькие не растягиваются
	MaxSide = 1920
	// Quality - баланс между размером файла и качеством
	Quality = 85
)

// Normalize decodes an uploaded image, fits it into the MaxSide bounding box
// (never upscaling) and re-encodes it as JPEG at Quality. The output is
// always JPEG whatever the input format was.
func Normalize(r io.Reader) (io.Reader, int64, error) {
	if r == nil {
		return nil, 0, errors.New("nil-reader provided to Normalize")
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to DEcode image in Normalize: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxSide || bounds.Dy() > MaxSide {
		img = imaging.Fit(img, MaxSide, MaxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(Quality)); err != nil {
		return nil, 0, fmt.Errorf("failed to ENcode image in Normalize: %w", err)
	}

	return &buf, int64(buf.Len()), nil
}
