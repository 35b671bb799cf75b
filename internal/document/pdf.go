package document

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDF is a Source backed by MuPDF. MuPDF contexts are not safe for concurrent use.
type PDF struct {
	mu    sync.Mutex
	doc   *fitz.Document
	dpi   float64
	pages int
}

func openPDF(data []byte, dpi float64, logger *slog.Logger) (*PDF, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	pages := doc.NumPage()
	checkStructure(data, pages, logger)

	return &PDF{doc: doc, dpi: dpi, pages: pages}, nil
}

// checkStructure cross-checks the page count with pdfcpu. Disagreement is logged only;
// MuPDF is more forgiving with damaged files than pdfcpu is.
func checkStructure(data []byte, pages int, logger *slog.Logger) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	count, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		logger.Warn("PDF structure check failed", "error", err, "pages", pages)
		return
	}
	if count != pages {
		logger.Warn("PDF page count mismatch", "mupdf", pages, "pdfcpu", count)
	}
}

func (p *PDF) NumPage() int { return p.pages }

func (p *PDF) Text(page int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	text, err := p.doc.Text(page)
	if err != nil {
		return "", fmt.Errorf("extracting text from page %d: %w", page, err)
	}
	return text, nil
}

func (p *PDF) Render(page int) (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	img, err := p.doc.ImageDPI(page, p.dpi)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", page, err)
	}
	return img, nil
}

func (p *PDF) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Close()
}
