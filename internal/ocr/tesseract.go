package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// TesseractConfig configures the tesseract CLI engine.
type TesseractConfig struct {
	Binary      string // if empty -> "tesseract"
	Lang        string // default "eng"
	PSM         int    // 0 leaves tesseract's default
	TessdataDir string
}

// Tesseract shells out to the tesseract binary, one temp PNG per page.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

// NewTesseract creates a Tesseract engine that runs the real binary.
func NewTesseract(cfg TesseractConfig, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	return NewTesseractWithRunner(cfg, execRunner{logger: logger}, logger)
}

// NewTesseractWithRunner creates a Tesseract engine with a custom command runner.
func NewTesseractWithRunner(cfg TesseractConfig, runner Runner, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Tesseract{cfg: cfg, runner: runner, logger: logger}
}

// Recognize writes the page to a temp file, which is removed on every exit path.
func (t *Tesseract) Recognize(ctx context.Context, page image.Image) (string, error) {
	data, err := encodePNG(page)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "statement-page-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp image: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp image: %w", err)
	}

	out, errb, err := t.runner.Run(ctx, t.cfg.Binary, t.args(path)...)
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(string(errb)))
	}
	return cleanText(string(out)), nil
}

func (t *Tesseract) args(path string) []string {
	args := []string{path, "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

// Close is a no-op, tesseract runs per call.
func (t *Tesseract) Close() error {
	return nil
}
