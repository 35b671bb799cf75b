package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zombor/statement-extractor/internal/normalize"
)

// Period is a billing period. From is never after To once Sorted.
type Period struct {
	From string
	To   string
}

// NewPeriod orders two ISO dates into a Period.
func NewPeriod(a, b string) Period {
	return Period{From: a, To: b}.Sorted()
}

// Sorted swaps the endpoints if they arrived reversed. ISO dates order lexically.
func (p Period) Sorted() Period {
	if p.To < p.From {
		return Period{From: p.To, To: p.From}
	}
	return p
}

func (p Period) String() string {
	return p.From + " to " + p.To
}

var rePeriodSep = regexp.MustCompile(`(?i)\s+to\s+`)

// ParsePeriod reads the "<from> to <to>" form produced by String.
func ParsePeriod(s string) (Period, error) {
	parts := rePeriodSep.Split(strings.TrimSpace(s), 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Period{}, fmt.Errorf("invalid billing period %q", s)
	}
	return Period{From: parts[0], To: parts[1]}, nil
}

func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(b []byte) error {
	v, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// BillingPeriod finds the covered date range. The result is always sorted.
func (e *Extractor) BillingPeriod(h Header) Field[Period] {
	f, _ := e.billingPeriod.Run(h)
	return f
}

func (e *Extractor) billingPeriodRules() Cascade[Period] {
	return Cascade[Period]{
		{
			Name:       "period-label-dates",
			Confidence: High,
			Match: func(h Header) (Period, bool) {
				span := rePeriodLbl.FindString(h.First)
				if span == "" {
					return Period{}, false
				}
				toks := normalize.DatePattern.FindAllString(span, -1)
				if len(toks) < 2 {
					return Period{}, false
				}
				return e.periodOf(toks[0], toks[1])
			},
		},
		{
			Name:       "period-label-from-to",
			Confidence: High,
			Match: func(h Header) (Period, bool) {
				span := rePeriodLbl.FindString(h.First)
				if span == "" {
					return Period{}, false
				}
				m := reFromTo.FindStringSubmatch(span)
				if m == nil {
					return Period{}, false
				}
				return e.periodOf(m[1], m[2])
			},
		},
		{
			Name:       "first-two-dates",
			Confidence: Medium,
			Match: func(h Header) (Period, bool) {
				combined := h.First + "\n\n" + h.Second
				var found []string
				for _, tok := range normalize.DatePattern.FindAllString(combined, -1) {
					d, ok := e.dates.Parse(tok)
					if !ok || contains(found, d) {
						continue
					}
					found = append(found, d)
					if len(found) == 2 {
						return NewPeriod(found[0], found[1]), true
					}
				}
				return Period{}, false
			},
		},
	}
}

// periodOf parses both ends. A date token inside an end is preferred over the raw
// text, which may trail into the rest of the line.
func (e *Extractor) periodOf(a, b string) (Period, bool) {
	from, ok := e.dateWithin(a)
	if !ok {
		return Period{}, false
	}
	to, ok := e.dateWithin(b)
	if !ok {
		return Period{}, false
	}
	return NewPeriod(from, to), true
}

func (e *Extractor) dateWithin(s string) (string, bool) {
	if d, ok := e.firstDate(s); ok {
		return d, true
	}
	return e.dates.Parse(s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
