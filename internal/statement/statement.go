package statement

import (
	"errors"
	"time"

	"github.com/zombor/statement-extractor/internal/acquire"
	"github.com/zombor/statement-extractor/internal/pipeline"
)

// ErrNotFound is returned when no statement has the requested ID.
var ErrNotFound = errors.New("statement not found")

// ErrInvalidDocument is returned when an upload cannot be opened as a statement.
var ErrInvalidDocument = errors.New("invalid document")

// Statement is an uploaded document with its extraction result
type Statement struct {
	ID          string                    `json:"id"`
	SourceID    string                    `json:"source_id"`
	Filename    string                    `json:"filename"` // stored file name
	ContentType string                    `json:"content_type"`
	Result      pipeline.ExtractionResult `json:"result"`
	Acquisition acquire.Document          `json:"acquisition"`
	CreatedAt   time.Time                 `json:"created_at"`
}
