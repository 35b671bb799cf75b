package extract

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zombor/statement-extractor/internal/normalize"
)

// PaymentRow is what the "Payment Due Date" table row yields.
type PaymentRow struct {
	// Columns is the values row split into cells
	Columns []string
	DueDate *string
	Minimum *decimal.Decimal
}

// Payment reads the values row under the first "Payment Due Date" heading. ok is false
// when there is no such heading or nothing follows it.
func (e *Extractor) Payment(h Header) (PaymentRow, bool) {
	lines := nonBlankLines(h.First, false)
	for i, ln := range lines {
		if !rePaymentLbl.MatchString(ln) {
			continue
		}
		if i+1 >= len(lines) {
			return PaymentRow{}, false
		}
		return e.paymentRow(strings.TrimSpace(lines[i+1])), true
	}
	return PaymentRow{}, false
}

func (e *Extractor) paymentRow(values string) PaymentRow {
	row := PaymentRow{Columns: reColumnGap.Split(values, -1)}
	if len(row.Columns) < 2 {
		row.Columns = strings.Fields(values)
	}

	if tok := reNumericDate.FindString(values); tok != "" {
		if d, ok := e.dates.Parse(tok); ok {
			row.DueDate = &d
		}
	}

	// Statements list the total before the minimum, so the last amount is the minimum.
	amounts := reRowAmount.FindAllString(values, -1)
	if len(amounts) > 0 {
		if v, ok := normalize.Amount(amounts[len(amounts)-1]); ok {
			row.Minimum = &v
		}
	}
	return row
}

// DueDate finds the payment due date: the table row first, then a labelled date.
func (e *Extractor) DueDate(h Header) Field[string] {
	f, _ := e.dueDate.Run(h)
	return f
}

func (e *Extractor) dueDateRules() Cascade[string] {
	return Cascade[string]{
		{
			Name:       "payment-due-row",
			Confidence: High,
			Match: func(h Header) (string, bool) {
				row, ok := e.Payment(h)
				if !ok || row.DueDate == nil {
					return "", false
				}
				return *row.DueDate, true
			},
		},
		{
			Name:       "due-date-label",
			Confidence: Medium,
			Match: func(h Header) (string, bool) {
				m := reDueDateLbl.FindStringSubmatch(h.First)
				if m == nil {
					return "", false
				}
				return e.firstDate(m[1])
			},
		},
	}
}
