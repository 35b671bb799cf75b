package document

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zombor/statement-extractor/internal/acquire"
)

// ErrUnsupportedType is returned when the content is neither a PDF nor a decodable image.
var ErrUnsupportedType = errors.New("unsupported document type")

// DefaultDPI is the render resolution used for OCR.
const DefaultDPI = 300

// Source is an opened document. Callers must Close it.
type Source interface {
	acquire.Source
	Close() error
}

// Opener opens uploaded bytes as a Source.
type Opener struct {
	DPI    float64
	logger *slog.Logger
}

// NewOpener creates an Opener rendering at dpi. dpi <= 0 means DefaultDPI.
func NewOpener(dpi float64, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Opener{DPI: dpi, logger: logger}
}

// Open detects the document kind from contentType and the leading bytes.
func (o *Opener) Open(data []byte, contentType string) (Source, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrUnsupportedType)
	}

	mimeType := normalizeMimeType(contentType)
	switch {
	case isPDF(data, mimeType):
		return openPDF(data, o.DPI, o.logger)
	case isHEICFormat(data) || isHEICMimeType(mimeType) || strings.HasPrefix(mimeType, "image/") || mimeType == "" || mimeType == "application/octet-stream":
		src, err := openImage(data, mimeType)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
}

func normalizeMimeType(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

func isPDF(data []byte, mimeType string) bool {
	return mimeType == "application/pdf" || strings.HasPrefix(string(data[:min(len(data), 5)]), "%PDF-")
}
