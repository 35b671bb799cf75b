package acquire

import (
	"strings"
	"unicode/utf8"
)

// Thresholds are the character-count cutoffs that drive OCR fallback.
type Thresholds struct {
	// MinTotalChars: fewer characters across all pages marks the document scanned.
	MinTotalChars int
	// DensePageChars: a page is dense when its trimmed text is longer than this.
	DensePageChars int
	// PreferDigitalChars: after OCR, a page keeps its digital text only when the
	// trimmed text is longer than this.
	PreferDigitalChars int
}

// DefaultThresholds returns the stock cutoffs (300, 50, 100).
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTotalChars:      300,
		DensePageChars:     50,
		PreferDigitalChars: 100,
	}
}

// Signals holds the inputs of the scanned-document predicate.
type Signals struct {
	TotalChars int
	DensePages int
	Pages      int
}

// Measure computes the scanned-detection signals for a set of page texts.
func (t Thresholds) Measure(pages []string) Signals {
	s := Signals{Pages: len(pages)}
	for _, p := range pages {
		s.TotalChars += utf8.RuneCountInString(p)
		if utf8.RuneCountInString(strings.TrimSpace(p)) > t.DensePageChars {
			s.DensePages++
		}
	}
	return s
}

// Scanned reports whether digital extraction is too thin to trust. Either signal is
// enough: too few characters overall, or fewer than half the pages are dense.
func (t Thresholds) Scanned(s Signals) bool {
	if s.TotalChars < t.MinTotalChars {
		return true
	}
	return s.DensePages < max(1, s.Pages/2)
}

// Merge picks, per page index, the digital text when it is long enough and the OCR
// text otherwise. The result is as long as the longer input and keeps index order.
func (t Thresholds) Merge(digital, ocr []string) []Page {
	n := max(len(digital), len(ocr))
	pages := make([]Page, n)
	for i := range n {
		var d, o string
		if i < len(digital) {
			d = digital[i]
		}
		if i < len(ocr) {
			o = ocr[i]
		}
		if utf8.RuneCountInString(strings.TrimSpace(d)) > t.PreferDigitalChars {
			pages[i] = Page{Index: i, Text: d, Origin: OriginDigital}
		} else {
			pages[i] = Page{Index: i, Text: o, Origin: OriginOCR}
		}
	}
	return pages
}
