package normalize

import "regexp"

// DatePattern matches date-shaped tokens: 15/02/2024, 1-2-24, 01 Jan 2024, Jan 15.
var DatePattern = regexp.MustCompile(`(?:\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b|\b\d{1,2}\s+[A-Za-z]{3,9}\s+\d{2,4}\b|\b[A-Za-z]{3,9}\s+\d{1,2}\b)`)

// AmountPattern matches currency-amount-shaped tokens. A decimal part is required,
// which keeps years and page numbers out.
var AmountPattern = regexp.MustCompile(`\(?\s*(?:₹|Rs\.?|INR|USD|\$)?\s*\d{1,3}(?:[,\d]*)(?:\.\d{1,2})\s*\)?`)
