package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/zombor/statement-extractor/internal/extract"
)

// ExtractionResult is everything extracted from one document. Nil pointers are fields
// no rule matched; their confidence is then Low.
type ExtractionResult struct {
	SourceID string `json:"source_id"`

	CardLast4           *string            `json:"card_last4"`
	CardLast4Confidence extract.Confidence `json:"card_last4_confidence"`

	StatementDate           *string            `json:"statement_date"`
	StatementDateConfidence extract.Confidence `json:"statement_date_confidence"`

	BillingPeriod           *extract.Period    `json:"billing_period"`
	BillingPeriodConfidence extract.Confidence `json:"billing_period_confidence"`

	DueDate *string `json:"due_date"`

	TotalBalance           *decimal.Decimal   `json:"total_balance"`
	TotalBalanceConfidence extract.Confidence `json:"total_balance_confidence"`

	MinimumPaymentDue *decimal.Decimal `json:"minimum_payment_due"`

	Transactions []extract.Transaction `json:"transactions"`
}

// MinimalResult is the short form: the headline fields without confidences.
type MinimalResult struct {
	CardLast4     *string          `json:"card_last4"`
	StatementDate *string          `json:"statement_date"`
	BillingPeriod *extract.Period  `json:"billing_period"`
	DueDate       *string          `json:"due_date"`
	TotalBalance  *decimal.Decimal `json:"total_balance"`
}

// Minimal projects r onto its short form.
func (r ExtractionResult) Minimal() MinimalResult {
	return MinimalResult{
		CardLast4:     r.CardLast4,
		StatementDate: r.StatementDate,
		BillingPeriod: r.BillingPeriod,
		DueDate:       r.DueDate,
		TotalBalance:  r.TotalBalance,
	}
}
