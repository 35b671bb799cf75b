package extract

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/zombor/statement-extractor/internal/normalize"
)

// BalanceLabels are tried in order; the first that matches with an amount wins.
var BalanceLabels = []string{
	"statement balance",
	"total balance",
	"amount due",
	"current balance",
	"balance due",
	"amount payable",
}

var reBalanceLabels = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(BalanceLabels))
	for i, lb := range BalanceLabels {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(lb) + `[:\s]{0,40}([^\n\r]{0,80})`)
	}
	return out
}()

// TotalBalance finds the statement's outstanding balance.
func (e *Extractor) TotalBalance(h Header) Field[decimal.Decimal] {
	f, _ := e.totalBalance.Run(h)
	return f
}

func (e *Extractor) totalBalanceRules() Cascade[decimal.Decimal] {
	return Cascade[decimal.Decimal]{
		{
			Name:       "balance-label",
			Confidence: High,
			Match: func(h Header) (decimal.Decimal, bool) {
				header := headRunes(h.First, e.opts.BalanceWindow)
				for _, re := range reBalanceLabels {
					m := re.FindStringSubmatch(header)
					if m == nil {
						continue
					}
					tok := normalize.AmountPattern.FindString(m[1])
					if tok == "" {
						continue
					}
					if v, ok := normalize.Amount(tok); ok {
						return v, true
					}
				}
				return decimal.Zero, false
			},
		},
		{
			Name:       "largest-amount",
			Confidence: Medium,
			Match: func(h Header) (decimal.Decimal, bool) {
				header := headRunes(h.First, e.opts.BalanceWindow)
				var best decimal.Decimal
				found := false
				for _, tok := range normalize.AmountPattern.FindAllString(header, -1) {
					v, ok := normalize.Amount(tok)
					if !ok {
						continue
					}
					if !found || v.Abs().GreaterThan(best.Abs()) {
						best, found = v, true
					}
				}
				return best, found
			},
		},
	}
}
