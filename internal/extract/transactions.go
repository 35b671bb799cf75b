package extract

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zombor/statement-extractor/internal/normalize"
)

// Transaction is one statement line with a date near its start and an amount near its end.
type Transaction struct {
	Date        *string         `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

const descriptionTrim = " -–—:,"

// Transactions scans every non-blank line of text. A line needs a date-shaped token in
// its leading window and an amount in its trailing window. Duplicates by date, amount
// to the cent and description prefix are dropped, keeping the first.
func (e *Extractor) Transactions(text string) []Transaction {
	out := []Transaction{}
	seen := make(map[txKey]struct{})

	for _, ln := range nonBlankLines(text, true) {
		dateTok := normalize.DatePattern.FindString(headRunes(ln, e.opts.TxDateWindow))
		if dateTok == "" {
			continue
		}
		amountTok := normalize.AmountPattern.FindString(tailRunes(ln, e.opts.TxAmountWindow))
		if amountTok == "" {
			continue
		}
		amount, ok := normalize.Amount(amountTok)
		if !ok {
			continue
		}

		tx := Transaction{
			Description: describe(ln, dateTok, amountTok),
			Amount:      amount,
		}
		if d, ok := e.dates.Parse(dateTok); ok {
			tx.Date = &d
		}

		key := e.key(tx)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tx)
	}
	return out
}

func describe(line, dateTok, amountTok string) string {
	desc := strings.ReplaceAll(line, dateTok, "")
	desc = strings.ReplaceAll(desc, amountTok, "")
	return strings.Trim(desc, descriptionTrim)
}

type txKey struct {
	hasDate     bool
	date        string
	amount      string
	description string
}

func (e *Extractor) key(tx Transaction) txKey {
	k := txKey{
		amount:      tx.Amount.Round(2).String(),
		description: headRunes(tx.Description, e.opts.DescriptionKeyLen),
	}
	if tx.Date != nil {
		k.hasDate = true
		k.date = *tx.Date
	}
	return k
}
