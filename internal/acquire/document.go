package acquire

import (
	"image"
	"strings"
)

// Origin tells where a page's text came from.
type Origin string

const (
	OriginDigital Origin = "digital"
	OriginOCR     Origin = "ocr"
)

// State is the acquisition state machine position.
//
// DigitalOnly moves to OCRFallbackTriggered when the document looks scanned, and from
// there unconditionally to Merged. A document that never triggers OCR stays DigitalOnly.
type State string

const (
	StateDigitalOnly          State = "digital_only"
	StateOCRFallbackTriggered State = "ocr_fallback_triggered"
	StateMerged               State = "merged"
)

// Source is an opened document whose pages can be read as text and rendered for OCR.
type Source interface {
	// NumPage returns the number of pages.
	NumPage() int
	// Text returns the digitally extracted text of a page.
	Text(page int) (string, error)
	// Render rasterizes a page for OCR.
	Render(page int) (image.Image, error)
}

// Page is the text of one page. Pages are never mutated after acquisition.
type Page struct {
	Index  int    `json:"index"`
	Text   string `json:"-"`
	Origin Origin `json:"origin"`
}

// Document is the outcome of an acquisition run.
type Document struct {
	Pages      []Page `json:"pages"`
	State      State  `json:"state"`
	Scanned    bool   `json:"scanned"`
	TotalChars int    `json:"total_chars"`
	DensePages int    `json:"dense_pages"`
}

// Page returns the text of page i, or "" when the document is shorter.
func (d Document) Page(i int) string {
	if i < 0 || i >= len(d.Pages) {
		return ""
	}
	return d.Pages[i].Text
}

// FullText joins all pages with a blank line between them.
func (d Document) FullText() string {
	texts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n\n")
}

// OCRPages counts pages whose text came from OCR.
func (d Document) OCRPages() int {
	n := 0
	for _, p := range d.Pages {
		if p.Origin == OriginOCR {
			n++
		}
	}
	return n
}
