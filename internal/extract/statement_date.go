package extract

import "strings"

// StatementDate finds the date the statement was generated.
func (e *Extractor) StatementDate(h Header) Field[string] {
	f, _ := e.statementDate.Run(h)
	return f
}

func (e *Extractor) statementDateRules() Cascade[string] {
	return Cascade[string]{
		{
			Name:       "statement-date-label",
			Confidence: High,
			Match: func(h Header) (string, bool) {
				m := reStmtDateLbl.FindStringSubmatch(h.First)
				if m == nil {
					return "", false
				}
				return e.firstDate(m[1])
			},
		},
		{
			Name:       "first-date-in-header",
			Confidence: Medium,
			Match: func(h Header) (string, bool) {
				lines := splitLines(h.First)
				if len(lines) > e.opts.StatementDateLines {
					lines = lines[:e.opts.StatementDateLines]
				}
				return e.firstDate(strings.Join(lines, "\n"))
			},
		},
	}
}
