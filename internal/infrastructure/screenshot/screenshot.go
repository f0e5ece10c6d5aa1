package screenshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const DefaultMaxWidth = 1024

// Decode parses a base64 screenshot as returned in result metadata. A data
// URL prefix ("data:image/png;base64,") is accepted.
func Decode(encoded string) (image.Image, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("empty screenshot")
	}
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode screenshot base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot image: %w", err)
	}
	return img, nil
}

// Save decodes the screenshot, shrinks it to maxWidth when wider and writes
// it to path. The format follows the file extension.
func Save(encoded, path string, maxWidth int) (image.Rectangle, error) {
	img, err := Decode(encoded)
	if err != nil {
		return image.Rectangle{}, err
	}
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return image.Rectangle{}, fmt.Errorf("create screenshot dir: %w", err)
		}
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(80)); err != nil {
		return image.Rectangle{}, fmt.Errorf("save screenshot: %w", err)
	}
	return img.Bounds(), nil
}
