// Package images normalizes uploaded project photos into the two sizes the
// rest of the system stores and serves.
package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

const (
	// FullMaxDim bounds the stored full-size copy.
	FullMaxDim = 1920
	// ThumbMaxDim bounds the checklist card thumbnail.
	ThumbMaxDim = 400
	// JPEGQuality applies to both encoded copies.
	JPEGQuality = 80
)

// Normalize decodes an uploaded image (JPEG, PNG, GIF or BMP), downscales it
// to the two bounded sizes preserving aspect ratio, and re-encodes both as
// base64 JPEG. Images already within bounds are re-encoded without resizing.
func Normalize(data []byte) (*domain.Photo, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	full, err := encodeBounded(src, FullMaxDim)
	if err != nil {
		return nil, fmt.Errorf("encode full image: %w", err)
	}
	thumb, err := encodeBounded(src, ThumbMaxDim)
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return &domain.Photo{Thumbnail: thumb, Full: full}, nil
}

// NormalizeBase64 accepts the upload as a base64 string, with or without a
// data URL prefix.
func NormalizeBase64(encoded string) (*domain.Photo, error) {
	raw, err := base64.StdEncoding.DecodeString(stripDataURL(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	return Normalize(raw)
}

func stripDataURL(s string) string {
	if len(s) > 5 && s[:5] == "data:" {
		for i := 0; i < len(s); i++ {
			if s[i] == ',' {
				return s[i+1:]
			}
		}
	}
	return s
}

func encodeBounded(src image.Image, maxDim int) (string, error) {
	b := src.Bounds()
	resized := src
	if b.Dx() > maxDim || b.Dy() > maxDim {
		resized = imaging.Fit(src, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
