package acquire

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Recognizer runs optical character recognition on a rendered page.
type Recognizer interface {
	Recognize(ctx context.Context, page image.Image) (string, error)
}

// Config configures an Acquirer.
type Config struct {
	Thresholds Thresholds
	// Workers bounds concurrent page OCR. 0 means 4.
	Workers int
	// PageTimeout bounds render+OCR of one page. 0 means no limit.
	PageTimeout time.Duration
}

// Acquirer produces page texts for a document, falling back to OCR for scanned input.
type Acquirer struct {
	cfg    Config
	ocr    Recognizer
	logger *slog.Logger
}

// New creates an Acquirer. ocr may be nil, in which case scanned pages stay empty.
func New(ocr Recognizer, cfg Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Acquirer{cfg: cfg, ocr: ocr, logger: logger}
}

// Acquire reads every page of src. Page-level failures degrade that page to "" and
// never abort the run.
func (a *Acquirer) Acquire(ctx context.Context, src Source) Document {
	digital := a.digitalText(src)
	signals := a.cfg.Thresholds.Measure(digital)
	scanned := a.cfg.Thresholds.Scanned(signals)

	doc := Document{
		State:      StateDigitalOnly,
		Scanned:    scanned,
		TotalChars: signals.TotalChars,
		DensePages: signals.DensePages,
	}

	if len(digital) > 0 && !scanned {
		doc.Pages = make([]Page, len(digital))
		for i, text := range digital {
			doc.Pages[i] = Page{Index: i, Text: text, Origin: OriginDigital}
		}
		return doc
	}

	doc.State = StateOCRFallbackTriggered
	a.logger.Info("document looks scanned, running OCR",
		"pages", src.NumPage(),
		"total_chars", signals.TotalChars,
		"dense_pages", signals.DensePages,
	)
	ocrTexts := a.recognizeAll(ctx, src)

	doc.Pages = a.cfg.Thresholds.Merge(digital, ocrTexts)
	doc.State = StateMerged
	return doc
}

func (a *Acquirer) digitalText(src Source) []string {
	n := src.NumPage()
	pages := make([]string, n)
	for i := range n {
		text, err := src.Text(i)
		if err != nil {
			a.logger.Debug("digital text extraction failed", "page", i, "error", err)
			continue
		}
		pages[i] = text
	}
	return pages
}

// recognizeAll OCRs every page concurrently. Results land in their page slot, so
// completion order never affects page order.
func (a *Acquirer) recognizeAll(ctx context.Context, src Source) []string {
	n := src.NumPage()
	texts := make([]string, n)
	if a.ocr == nil {
		a.logger.Warn("no OCR engine configured, scanned pages stay empty", "pages", n)
		return texts
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i := range n {
		g.Go(func() error {
			texts[i] = a.recognizePage(gctx, src, i)
			return nil
		})
	}
	_ = g.Wait()
	return texts
}

type ocrOutcome struct {
	text string
	err  error
}

func (a *Acquirer) recognizePage(ctx context.Context, src Source, page int) string {
	if a.cfg.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.PageTimeout)
		defer cancel()
	}
	start := time.Now()

	done := make(chan ocrOutcome, 1)
	go func() {
		img, err := src.Render(page)
		if err != nil {
			done <- ocrOutcome{err: fmt.Errorf("render: %w", err)}
			return
		}
		text, err := a.ocr.Recognize(ctx, img)
		done <- ocrOutcome{text: text, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			a.logger.Warn("page OCR failed", "page", page, "error", out.err)
			return ""
		}
		a.logger.Debug("page OCR ok", "page", page, "chars", len(out.text), "duration_ms", time.Since(start).Milliseconds())
		return out.text
	case <-ctx.Done():
		a.logger.Warn("page OCR timed out", "page", page, "error", ctx.Err())
		return ""
	}
}
