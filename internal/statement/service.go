package statement

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/statement-extractor/internal/acquire"
	"github.com/zombor/statement-extractor/internal/document"
	"github.com/zombor/statement-extractor/internal/pipeline"
)

// IDGenerator generates unique IDs for statements
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// Opener opens uploaded bytes as a document
type Opener interface {
	Open(data []byte, contentType string) (document.Source, error)
}

// Extractor runs the extraction pipeline over an opened document
type Extractor interface {
	RunDocument(ctx context.Context, sourceID string, src acquire.Source) (pipeline.ExtractionResult, acquire.Document)
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now().UTC()
}

// Service handles statement operations
type Service struct {
	db          DB
	storage     Storage
	opener      Opener
	extractor   Extractor
	metrics     *Metrics
	idGenerator IDGenerator
	timeSource  TimeSource
	logger      *slog.Logger
}

// NewService creates a new Service with UUID IDs and the wall clock
func NewService(db DB, storage Storage, opener Opener, extractor Extractor, metrics *Metrics, logger *slog.Logger) *Service {
	return NewServiceWithDeps(db, storage, opener, extractor, metrics, logger, uuidGenerator{}, defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, storage Storage, opener Opener, extractor Extractor, metrics *Metrics, logger *slog.Logger, idGen IDGenerator, timeSrc TimeSource) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Service{
		db:          db,
		storage:     storage,
		opener:      opener,
		extractor:   extractor,
		metrics:     metrics,
		idGenerator: idGen,
		timeSource:  timeSrc,
		logger:      logger,
	}
}

// Metrics returns the service's metrics
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

var (
	reFilenameJunk  = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	reFilenameSpace = regexp.MustCompile(`\s+`)
)

// sanitizeFilename strips special characters and truncates long names
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = reFilenameJunk.ReplaceAllString(base, "")
	base = reFilenameSpace.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "statement"
	}
	if ext == "." {
		ext = ""
	}

	return base + ext
}

// ProcessStatement stores an upload, extracts its fields and saves the record
func (s *Service) ProcessStatement(ctx context.Context, filename string, data []byte, contentType string) (*Statement, error) {
	start := time.Now()
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedName, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	src, err := s.opener.Open(data, contentType)
	if err != nil {
		s.logger.Error("Failed to open statement",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.metrics.RecordRejected()
		s.removeFile(savedName)
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	defer src.Close()

	result, doc := s.extractor.RunDocument(ctx, filename, src)

	statement := &Statement{
		ID:          id,
		SourceID:    filename,
		Filename:    savedName,
		ContentType: contentType,
		Result:      result,
		Acquisition: doc,
		CreatedAt:   now,
	}

	if err := s.db.SaveStatement(statement); err != nil {
		s.removeFile(savedName)
		return nil, fmt.Errorf("saving statement to database: %w", err)
	}

	s.metrics.RecordProcessed(result, doc, time.Since(start))
	return statement, nil
}

func (s *Service) removeFile(name string) {
	if err := s.storage.Delete(name); err != nil {
		s.logger.Warn("Failed to delete file", "filename", name, "error", err)
	}
}

// GetStatement retrieves a statement by ID
func (s *Service) GetStatement(id string) (*Statement, error) {
	statement, err := s.db.GetStatement(id)
	if err != nil {
		return nil, fmt.Errorf("getting statement: %w", err)
	}
	return statement, nil
}

// ListStatements returns all statements
func (s *Service) ListStatements() ([]*Statement, error) {
	statements, err := s.db.ListStatements()
	if err != nil {
		return nil, fmt.Errorf("listing statements: %w", err)
	}
	return statements, nil
}

// DeleteStatement removes a statement and its file
func (s *Service) DeleteStatement(id string) error {
	statement, err := s.db.GetStatement(id)
	if err != nil {
		return fmt.Errorf("getting statement for deletion: %w", err)
	}

	s.removeFile(statement.Filename)

	if err := s.db.DeleteStatement(id); err != nil {
		return fmt.Errorf("deleting statement from database: %w", err)
	}
	return nil
}

// GetStatementFile retrieves the uploaded file for a statement
func (s *Service) GetStatementFile(id string) ([]byte, string, error) {
	statement, err := s.db.GetStatement(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting statement: %w", err)
	}

	data, err := s.storage.Get(statement.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting statement file: %w", err)
	}

	return data, statement.ContentType, nil
}

// Export encodes a statement's result in the given format
func (s *Service) Export(id string, format Format) ([]byte, error) {
	statement, err := s.db.GetStatement(id)
	if err != nil {
		return nil, fmt.Errorf("getting statement: %w", err)
	}
	data, err := format.Encode(statement.Result)
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", format.Name, err)
	}
	return data, nil
}
