package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are JSON numbers in every result file
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	currencyMarks = strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", "INR", "", "USD", "", "$", "")
	reNonNumeric  = regexp.MustCompile(`[^\d.\-]`)
)

// Amount cleans a currency-formatted string and parses it as a decimal.
// "(123.45)" is read as -123.45. ok is false when no valid amount remains.
func Amount(s string) (decimal.Decimal, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return decimal.Zero, false
	}

	t = currencyMarks.Replace(t)
	t = strings.ReplaceAll(t, ",", "")
	t = strings.TrimSpace(t)

	negative := false
	if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
		negative = true
		t = strings.TrimSpace(t[1 : len(t)-1])
	}

	t = reNonNumeric.ReplaceAllString(t, "")
	if t == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
