package extract

// CardLast4 finds the trailing four digits of the (usually masked) card number.
func (e *Extractor) CardLast4(h Header) Field[string] {
	f, _ := e.card.Run(h)
	return f
}

func (e *Extractor) cardRules() Cascade[string] {
	return Cascade[string]{
		{
			Name:       "card-no-line",
			Confidence: High,
			Match: func(h Header) (string, bool) {
				m := reCardNoLine.FindStringSubmatch(h.First)
				if m == nil {
					return "", false
				}
				groups := reFourDigits.FindAllString(m[1], -1)
				if len(groups) == 0 {
					return "", false
				}
				return groups[len(groups)-1], true
			},
		},
		{
			Name:       "card-or-account-label",
			Confidence: Medium,
			Match: func(h Header) (string, bool) {
				m := reCardAccount.FindStringSubmatch(h.First)
				if m == nil {
					return "", false
				}
				return m[1], true
			},
		},
		{
			Name:       "first-four-digits",
			Confidence: Low,
			Match: func(h Header) (string, bool) {
				m := reBareFour.FindStringSubmatch(h.First)
				if m == nil {
					return "", false
				}
				return m[1], true
			},
		},
	}
}
