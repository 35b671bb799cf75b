package extract

import (
	"github.com/shopspring/decimal"

	"github.com/zombor/statement-extractor/internal/normalize"
)

// DateParser parses a date-shaped string into YYYY-MM-DD.
type DateParser interface {
	Parse(s string) (string, bool)
}

// Options holds the heuristic windows. Zero values take the defaults.
type Options struct {
	// StatementDateLines is how many header lines the unlabelled statement date scan covers.
	StatementDateLines int
	// BalanceWindow is how many leading characters of the header the balance search covers.
	BalanceWindow int
	// TxDateWindow is how many leading characters of a line may hold a transaction date.
	TxDateWindow int
	// TxAmountWindow is how many trailing characters of a line may hold a transaction amount.
	TxAmountWindow int
	// DescriptionKeyLen is the description prefix used in the transaction dedup key.
	DescriptionKeyLen int
}

// DefaultOptions returns the windows the heuristics were tuned with.
func DefaultOptions() Options {
	return Options{
		StatementDateLines: 60,
		BalanceWindow:      5000,
		TxDateWindow:       18,
		TxAmountWindow:     40,
		DescriptionKeyLen:  40,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.StatementDateLines <= 0 {
		o.StatementDateLines = d.StatementDateLines
	}
	if o.BalanceWindow <= 0 {
		o.BalanceWindow = d.BalanceWindow
	}
	if o.TxDateWindow <= 0 {
		o.TxDateWindow = d.TxDateWindow
	}
	if o.TxAmountWindow <= 0 {
		o.TxAmountWindow = d.TxAmountWindow
	}
	if o.DescriptionKeyLen <= 0 {
		o.DescriptionKeyLen = d.DescriptionKeyLen
	}
	return o
}

// Extractor runs the field cascades and the transaction scan. It holds no mutable
// state and is safe for concurrent use.
type Extractor struct {
	opts  Options
	dates DateParser

	card          Cascade[string]
	statementDate Cascade[string]
	billingPeriod Cascade[Period]
	dueDate       Cascade[string]
	totalBalance  Cascade[decimal.Decimal]
}

// New creates an Extractor. A nil dates uses normalize.NewDateParser(nil).
func New(opts Options, dates DateParser) *Extractor {
	if dates == nil {
		dates = normalize.NewDateParser(nil)
	}
	e := &Extractor{opts: opts.withDefaults(), dates: dates}
	e.card = e.cardRules()
	e.statementDate = e.statementDateRules()
	e.billingPeriod = e.billingPeriodRules()
	e.dueDate = e.dueDateRules()
	e.totalBalance = e.totalBalanceRules()
	return e
}

// Options returns the effective options.
func (e *Extractor) Options() Options { return e.opts }

// firstDate parses the first date-shaped token in s.
func (e *Extractor) firstDate(s string) (string, bool) {
	tok := normalize.DatePattern.FindString(s)
	if tok == "" {
		return "", false
	}
	return e.dates.Parse(tok)
}
