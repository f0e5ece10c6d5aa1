package screenshot

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecode(t *testing.T) {
	img, err := Decode(encodedPNG(t, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())

	img, err = Decode("data:image/png;base64," + encodedPNG(t, 5, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode("")
	assert.Error(t, err)

	_, err = Decode("not base64!")
	assert.ErrorContains(t, err, "base64")

	_, err = Decode(base64.StdEncoding.EncodeToString([]byte("plain text")))
	assert.ErrorContains(t, err, "image")
}

func TestSave_Resizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shots", "page.jpg")

	bounds, err := Save(encodedPNG(t, 2000, 1000), path, DefaultMaxWidth)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxWidth, bounds.Dx())
	assert.Equal(t, 512, bounds.Dy())

	saved, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxWidth, saved.Bounds().Dx())
}

func TestSave_KeepsSmallImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.png")

	bounds, err := Save(encodedPNG(t, 300, 200), path, DefaultMaxWidth)
	require.NoError(t, err)
	assert.Equal(t, 300, bounds.Dx())
}
