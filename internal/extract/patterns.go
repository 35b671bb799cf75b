package extract

import "regexp"

var (
	reCardNoLine  = regexp.MustCompile(`(?i)Card\s*No[:\s]*([^\n\r]+)`)
	reCardAccount = regexp.MustCompile(`(?i)(?:Card|Account)[^\n\r]{0,40}(\d{4})`)
	reFourDigits  = regexp.MustCompile(`\d{4}`)
	reBareFour    = regexp.MustCompile(`\b(\d{4})\b`)
	reStmtDateLbl = regexp.MustCompile(`(?i)(?:Statement Date|Date of Statement|Statement as on|Statement on)[:\s]{0,60}(.{0,80})`)
	rePeriodLbl   = regexp.MustCompile(`(?i)(?:Statement Period|Billing Period|Statement From|Statement For).{0,250}`)
	reFromTo      = regexp.MustCompile(`(?i)from\s+(.{0,60})\s+to\s+(.{0,60})`)
	rePaymentLbl  = regexp.MustCompile(`(?i)Payment\s+Due\s+Date`)
	reColumnGap   = regexp.MustCompile(`\s{2,}|\t`)
	reNumericDate = regexp.MustCompile(`\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}`)
	reRowAmount   = regexp.MustCompile(`\(?\s*(?:₹|Rs\.?|INR|\$)?\s*[\d,]+\.\d{2}\s*\)?`)
	reDueDateLbl  = regexp.MustCompile(`(?i)(?:Due Date|Payment Due Date|Please pay by)[:\s]{0,80}(.{0,80})`)
)
