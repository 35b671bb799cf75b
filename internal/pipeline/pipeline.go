package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zombor/statement-extractor/internal/acquire"
	"github.com/zombor/statement-extractor/internal/extract"
)

const previewLines = 60

// Pipeline acquires a document's text and runs every extractor over it.
type Pipeline struct {
	acquirer  *acquire.Acquirer
	extractor *extract.Extractor
	logger    *slog.Logger
}

// New creates a Pipeline.
func New(acquirer *acquire.Acquirer, extractor *extract.Extractor, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{acquirer: acquirer, extractor: extractor, logger: logger}
}

// Run extracts a result from src. It never fails: anything that cannot be read or
// matched comes back as a null field.
func (p *Pipeline) Run(ctx context.Context, sourceID string, src acquire.Source) ExtractionResult {
	result, _ := p.RunDocument(ctx, sourceID, src)
	return result
}

// RunDocument is Run that also returns the acquired document.
func (p *Pipeline) RunDocument(ctx context.Context, sourceID string, src acquire.Source) (ExtractionResult, acquire.Document) {
	logger := p.logger.With("source_id", sourceID)

	doc := p.acquirer.Acquire(ctx, src)
	logger.Info("text acquired",
		"pages", len(doc.Pages),
		"state", doc.State,
		"scanned", doc.Scanned,
		"ocr_pages", doc.OCRPages(),
	)
	p.preview(logger, doc.Page(0))

	result := p.Extract(sourceID, doc)
	p.summarize(logger, result)
	return result, doc
}

// Extract runs the extractors over an already acquired document.
func (p *Pipeline) Extract(sourceID string, doc acquire.Document) ExtractionResult {
	h := extract.Header{First: doc.Page(0), Second: doc.Page(1)}
	ex := p.extractor

	card := ex.CardLast4(h)
	stmtDate := ex.StatementDate(h)
	period := ex.BillingPeriod(h)
	due := ex.DueDate(h)
	balance := ex.TotalBalance(h)

	result := ExtractionResult{
		SourceID:                sourceID,
		CardLast4:               card.Value,
		CardLast4Confidence:     card.Confidence,
		StatementDate:           stmtDate.Value,
		StatementDateConfidence: stmtDate.Confidence,
		BillingPeriodConfidence: period.Confidence,
		DueDate:                 due.Value,
		TotalBalance:            balance.Value,
		TotalBalanceConfidence:  balance.Confidence,
		Transactions:            ex.Transactions(doc.FullText()),
	}
	if period.Value != nil {
		sorted := period.Value.Sorted()
		result.BillingPeriod = &sorted
	}
	if row, ok := ex.Payment(h); ok {
		result.MinimumPaymentDue = row.Minimum
	}
	return result
}

func (p *Pipeline) preview(logger *slog.Logger, firstPage string) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i, ln := range extract.Lines(firstPage, previewLines) {
		logger.Debug("first page", "line", fmt.Sprintf("%02d", i+1), "text", ln)
	}
}

func (p *Pipeline) summarize(logger *slog.Logger, r ExtractionResult) {
	logger.Info("fields extracted",
		"card_last4", deref(r.CardLast4), "card_last4_confidence", r.CardLast4Confidence,
		"statement_date", deref(r.StatementDate), "statement_date_confidence", r.StatementDateConfidence,
		"billing_period", derefStringer(r.BillingPeriod), "billing_period_confidence", r.BillingPeriodConfidence,
		"due_date", deref(r.DueDate),
		"total_balance", derefStringer(r.TotalBalance), "total_balance_confidence", r.TotalBalanceConfidence,
		"minimum_payment_due", derefStringer(r.MinimumPaymentDue),
		"transactions", len(r.Transactions),
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefStringer[T fmt.Stringer](v *T) string {
	if v == nil {
		return ""
	}
	return (*v).String()
}
