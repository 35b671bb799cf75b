package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	dps "github.com/markusmobius/go-dateparser"
)

const isoDate = "2006-01-02"

var reOrdinal = regexp.MustCompile(`(\d)(st|nd|rd|th)\b`)

// DateParser turns date-shaped strings into ISO 8601 calendar dates.
//
// A locale-aware natural-language parser is tried first, preferring the first day of
// the month when the day is missing. A fuzzy format-sniffing parser is the fallback.
// Both results must have a year in [1901, now+2]; anything else is a misread
// (a page number, a reference code) and is rejected.
type DateParser struct {
	now    func() time.Time
	parser *dps.Parser
}

// NewDateParser creates a DateParser. now supplies the reference time for relative
// dates and the year-plausibility window; nil means time.Now.
func NewDateParser(now func() time.Time) *DateParser {
	if now == nil {
		now = time.Now
	}
	return &DateParser{
		now:    now,
		parser: &dps.Parser{},
	}
}

var defaultDateParser = NewDateParser(nil)

// Date parses s with the default DateParser.
func Date(s string) (string, bool) {
	return defaultDateParser.Parse(s)
}

// Parse returns s as YYYY-MM-DD. ok is false when neither parser yields a plausible date.
func (p *DateParser) Parse(s string) (string, bool) {
	s = strings.TrimSpace(reOrdinal.ReplaceAllString(s, "${1}"))
	if s == "" {
		return "", false
	}
	now := p.now()

	cfg := &dps.Configuration{
		Languages:           []string{"en"},
		CurrentTime:         now,
		PreferredDayOfMonth: dps.First,
	}
	if dt, err := p.parser.Parse(cfg, s); err == nil && p.plausible(dt.Time, now) {
		return dt.Time.Format(isoDate), true
	}

	for _, candidate := range fuzzyCandidates(s) {
		t, err := dateparse.ParseIn(candidate, time.UTC,
			dateparse.PreferMonthFirst(false),
			dateparse.RetryAmbiguousDateWithSwap(true),
		)
		if err == nil && p.plausible(t, now) {
			return t.Format(isoDate), true
		}
	}
	return "", false
}

func (p *DateParser) plausible(t time.Time, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.Year() > 1900 && t.Year() <= now.Year()+2
}

// fuzzyCandidates is s itself followed by every date-shaped token inside it, so
// surrounding words do not defeat the fallback parser.
func fuzzyCandidates(s string) []string {
	out := []string{s}
	for _, tok := range DatePattern.FindAllString(s, -1) {
		if tok != s {
			out = append(out, tok)
		}
	}
	return out
}
