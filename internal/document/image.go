package document

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"strings"

	"github.com/gen2brain/heic"
)

// Image is a single-page Source with no digital text layer.
type Image struct {
	img image.Image
}

func openImage(data []byte, mimeType string) (*Image, error) {
	img, err := decodeImage(data, mimeType)
	if err != nil {
		return nil, err
	}
	return &Image{img: img}, nil
}

// NewImage wraps an already decoded image.
func NewImage(img image.Image) *Image {
	return &Image{img: img}
}

func decodeImage(data []byte, mimeType string) (image.Image, error) {
	// Phones commonly upload HEIC, which the standard library cannot decode
	if isHEICFormat(data) || isHEICMimeType(mimeType) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "unknown format") {
			return nil, fmt.Errorf("%w: supported formats are PDF, JPEG, PNG, GIF, HEIC, HEIF", ErrUnsupportedType)
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func (i *Image) NumPage() int { return 1 }

func (i *Image) Text(page int) (string, error) {
	if page != 0 {
		return "", fmt.Errorf("page %d out of range", page)
	}
	return "", nil
}

func (i *Image) Render(page int) (image.Image, error) {
	if page != 0 {
		return nil, fmt.Errorf("page %d out of range", page)
	}
	return i.img, nil
}

func (i *Image) Close() error { return nil }

// isHEICFormat checks for an ftyp box with a HEIC-family brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
