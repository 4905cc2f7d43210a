package images

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, encoded string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestNormalizeDownscalesLargeImages(t *testing.T) {
	photo, err := Normalize(pngBytes(t, 4000, 3000))
	require.NoError(t, err)

	full := decodeJPEG(t, photo.Full)
	assert.Equal(t, 1920, full.Bounds().Dx())
	assert.Equal(t, 1440, full.Bounds().Dy(), "aspect ratio preserved")

	thumb := decodeJPEG(t, photo.Thumbnail)
	assert.Equal(t, 400, thumb.Bounds().Dx())
	assert.Equal(t, 300, thumb.Bounds().Dy())
}

func TestNormalizeKeepsSmallImagesUnscaled(t *testing.T) {
	photo, err := Normalize(pngBytes(t, 300, 200))
	require.NoError(t, err)

	full := decodeJPEG(t, photo.Full)
	assert.Equal(t, 300, full.Bounds().Dx())
	assert.Equal(t, 200, full.Bounds().Dy())
}

func TestNormalizePortraitBoundsHeight(t *testing.T) {
	photo, err := Normalize(pngBytes(t, 1000, 2500))
	require.NoError(t, err)

	full := decodeJPEG(t, photo.Full)
	assert.Equal(t, 1920, full.Bounds().Dy())
	assert.Less(t, full.Bounds().Dx(), 1920)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("not an image"))
	assert.Error(t, err)
}

func TestNormalizeBase64StripsDataURLPrefix(t *testing.T) {
	raw := pngBytes(t, 100, 100)
	withPrefix := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	photo, err := NormalizeBase64(withPrefix)
	require.NoError(t, err)
	assert.NotEmpty(t, photo.Full)
	assert.NotEmpty(t, photo.Thumbnail)
}

func TestNormalizeBase64RejectsBadEncoding(t *testing.T) {
	_, err := NormalizeBase64("@@@not-base64@@@")
	assert.Error(t, err)
}
