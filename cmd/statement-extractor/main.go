package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/statement-extractor/internal/acquire"
	"github.com/zombor/statement-extractor/internal/document"
	"github.com/zombor/statement-extractor/internal/extract"
	"github.com/zombor/statement-extractor/internal/normalize"
	"github.com/zombor/statement-extractor/internal/ocr"
	"github.com/zombor/statement-extractor/internal/pipeline"
	"github.com/zombor/statement-extractor/internal/statement"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A missing .env file is fine
	_ = godotenv.Load()

	defaults := acquire.DefaultThresholds()
	opts := extract.DefaultOptions()

	fs := ff.NewFlagSet("statement-extractor")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "statement-extractor.db", "Database file path")
		storagePath = fs.StringLong("storage", "./statements", "Storage directory path")
		outputDir   = fs.StringLong("output", ".", "Output directory for result files when run on file arguments")
		engineType  = fs.StringLong("ocr", "tesseract", "OCR engine: 'tesseract', 'gemini', 'ollama' or 'none'")
		tessBinary  = fs.StringLong("tesseract-bin", "tesseract", "Tesseract binary")
		tessLang    = fs.StringLong("tesseract-lang", "eng", "Tesseract language")
		tessPSM     = fs.IntLong("tesseract-psm", 0, "Tesseract page segmentation mode (0 keeps its default)")
		tessdata    = fs.StringLong("tessdata-dir", "", "Tesseract tessdata directory (optional)")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama model name")
		dpi         = fs.IntLong("dpi", document.DefaultDPI, "Render resolution for OCR")
		workers     = fs.IntLong("ocr-workers", 4, "Pages recognized concurrently")
		pageTimeout = fs.DurationLong("ocr-page-timeout", 2*time.Minute, "Time limit for rendering and recognizing one page (0 for none)")
		minChars    = fs.IntLong("scanned-min-chars", defaults.MinTotalChars, "Documents with fewer characters are treated as scanned")
		denseChars  = fs.IntLong("dense-page-chars", defaults.DensePageChars, "Characters a page needs to count as text-bearing")
		preferChars = fs.IntLong("prefer-digital-chars", defaults.PreferDigitalChars, "Characters a page needs to keep its digital text over OCR")
		dateLines   = fs.IntLong("statement-date-lines", opts.StatementDateLines, "Header lines scanned for an unlabelled statement date")
		balanceWin  = fs.IntLong("balance-window", opts.BalanceWindow, "Header characters searched for a labelled balance")
		txDateWin   = fs.IntLong("tx-date-window", opts.TxDateWindow, "Leading characters of a line that may hold a transaction date")
		txAmountWin = fs.IntLong("tx-amount-window", opts.TxAmountWindow, "Trailing characters of a line that may hold a transaction amount")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel    = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		logFormat   = fs.StringLong("log-format", "text", "Log format: 'text' or 'json'")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("STATEMENT_EXTRACTOR"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	logger, err := newLogger(os.Stderr, *logLevel, *logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine(ctx, *engineType, engineConfig{
		tesseract: ocr.TesseractConfig{
			Binary:      *tessBinary,
			Lang:        *tessLang,
			PSM:         *tessPSM,
			TessdataDir: *tessdata,
		},
		geminiKey:   *geminiKey,
		geminiModel: *geminiModel,
		ollamaURL:   *ollamaURL,
		ollamaModel: *ollamaModel,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize OCR engine", "engine", *engineType, "error", err)
		os.Exit(1)
	}
	var recognizer acquire.Recognizer
	if engine != nil {
		defer engine.Close()
		recognizer = engine
	}

	acquirer := acquire.New(recognizer, acquire.Config{
		Thresholds: acquire.Thresholds{
			MinTotalChars:      *minChars,
			DensePageChars:     *denseChars,
			PreferDigitalChars: *preferChars,
		},
		Workers:     *workers,
		PageTimeout: *pageTimeout,
	}, logger)
	extractor := extract.New(extract.Options{
		StatementDateLines: *dateLines,
		BalanceWindow:      *balanceWin,
		TxDateWindow:       *txDateWin,
		TxAmountWindow:     *txAmountWin,
	}, normalize.NewDateParser(nil))
	p := pipeline.New(acquirer, extractor, logger)
	opener := document.NewOpener(float64(*dpi), logger)

	if files := fs.GetArgs(); len(files) > 0 {
		if err := extractFiles(ctx, p, opener, files, *outputDir, logger); err != nil {
			logger.Error("Extraction failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Initialize database
	logger.Info("Initializing database...")
	db, err := statement.NewBoltDB(*dbPath)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize storage
	logger.Info("Initializing storage...")
	store, err := statement.NewLocalStorage(*storagePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	service := statement.NewService(db, store, opener, p, statement.NewMetrics(), logger)
	basicAuth := statement.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := statement.NewServer(service, basicAuth, logger)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		logger.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	logger.Info("Shutting down...")
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: want text or json", format)
	}
}

type engineConfig struct {
	tesseract   ocr.TesseractConfig
	geminiKey   string
	geminiModel string
	ollamaURL   string
	ollamaModel string
}

// newEngine builds the configured OCR engine. "none" returns a nil engine, which
// leaves scanned pages empty.
func newEngine(ctx context.Context, kind string, cfg engineConfig, logger *slog.Logger) (ocr.Engine, error) {
	switch kind {
	case "tesseract":
		logger.Info("Initializing Tesseract OCR...", "binary", cfg.tesseract.Binary, "lang", cfg.tesseract.Lang)
		return ocr.NewTesseract(cfg.tesseract, logger), nil
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := cfg.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		logger.Info("Initializing Gemini OCR...", "model", cfg.geminiModel)
		return ocr.NewGemini(ctx, apiKey, cfg.geminiModel)
	case "ollama":
		logger.Info("Initializing Ollama OCR...", "url", cfg.ollamaURL, "model", cfg.ollamaModel)
		return ocr.NewOllama(cfg.ollamaURL, cfg.ollamaModel), nil
	case "none":
		logger.Warn("OCR disabled, scanned documents will yield empty text")
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid OCR engine %q: want tesseract, gemini, ollama or none", kind)
	}
}

// extractFiles runs the pipeline over each file and writes its result files next to
// each other in outputDir. Every file is attempted; the first failure is returned.
func extractFiles(ctx context.Context, p *pipeline.Pipeline, opener *document.Opener, files []string, outputDir string, logger *slog.Logger) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var firstErr error
	for _, path := range files {
		if err := extractFile(ctx, p, opener, path, outputDir, logger); err != nil {
			logger.Error("Failed to extract statement", "file", path, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func extractFile(ctx context.Context, p *pipeline.Pipeline, opener *document.Opener, path, outputDir string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	src, err := opener.Open(data, "")
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	result := p.Run(ctx, filepath.Base(path), src)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outputs := []struct {
		name   string
		encode func() ([]byte, error)
	}{
		{base + ".result.json", func() ([]byte, error) { return statement.ResultJSON(result) }},
		{base + ".minimal.json", func() ([]byte, error) { return statement.MinimalJSON(result) }},
		{base + ".transactions.csv", func() ([]byte, error) { return statement.TransactionsCSV(result.Transactions) }},
	}
	for _, out := range outputs {
		data, err := out.encode()
		if err != nil {
			return fmt.Errorf("encoding %s: %w", out.name, err)
		}
		target := filepath.Join(outputDir, out.name)
		if err := os.WriteFile(target, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		logger.Info("Wrote result file", "file", target)
	}
	return nil
}
