package extract

import (
	"encoding/json"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/zombor/statement-extractor/internal/normalize"
)

var _ = Describe("Confidence", func() {
	It("orders High above Medium above Low", func() {
		Expect(High).To(BeNumerically(">", Medium))
		Expect(Medium).To(BeNumerically(">", Low))
	})

	It("marshals as its name", func() {
		b, err := json.Marshal(map[string]Confidence{"c": Medium})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal(`{"c":"Medium"}`))
	})

	It("unmarshals its name", func() {
		var c Confidence
		Expect(json.Unmarshal([]byte(`"High"`), &c)).To(Succeed())
		Expect(c).To(Equal(High))
	})

	It("rejects unknown names", func() {
		_, err := ParseConfidence("Certain")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Cascade", func() {
	var cascade Cascade[string]

	BeforeEach(func() {
		cascade = Cascade[string]{
			{Name: "strong", Confidence: High, Match: func(h Header) (string, bool) {
				return "strong", strings.Contains(h.First, "strong")
			}},
			{Name: "weak", Confidence: Low, Match: func(h Header) (string, bool) {
				return "weak", strings.Contains(h.First, "weak")
			}},
		}
	})

	It("returns the first rule that matches", func() {
		f, name := cascade.Run(Header{First: "weak and strong"})
		Expect(f.Value).NotTo(BeNil())
		Expect(*f.Value).To(Equal("strong"))
		Expect(f.Confidence).To(Equal(High))
		Expect(name).To(Equal("strong"))
	})

	It("falls through to later rules", func() {
		f, name := cascade.Run(Header{First: "only weak"})
		Expect(f.Value).NotTo(BeNil())
		Expect(*f.Value).To(Equal("weak"))
		Expect(f.Confidence).To(Equal(Low))
		Expect(name).To(Equal("weak"))
	})

	It("reports a Low miss when nothing matches", func() {
		f, name := cascade.Run(Header{First: "neither"})
		Expect(f.Found()).To(BeFalse())
		Expect(f.Value).To(BeNil())
		Expect(f.Confidence).To(Equal(Low))
		Expect(name).To(BeEmpty())
	})
})

var _ = Describe("splitLines", func() {
	DescribeTable("line boundaries",
		func(in string, expected []string) {
			Expect(splitLines(in)).To(Equal(expected))
		},
		Entry("mixed endings", "a\r\nb\rc\nd", []string{"a", "b", "c", "d"}),
		Entry("trailing newline", "a\n", []string{"a"}),
		Entry("blank lines kept", "a\n\nb", []string{"a", "", "b"}),
		Entry("form feed", "a\fb", []string{"a", "b"}),
		Entry("unicode separator", "a\u2028b", []string{"a", "b"}),
		Entry("empty", "", []string(nil)),
	)
})

var _ = Describe("Extractor", func() {
	var ex *Extractor

	BeforeEach(func() {
		ex = newTestExtractor()
	})

	Describe("CardLast4", func() {
		DescribeTable("cascade",
			func(text string, value string, conf Confidence) {
				f := ex.CardLast4(Header{First: text})
				Expect(f.Value).NotTo(BeNil())
				Expect(*f.Value).To(Equal(value))
				Expect(f.Confidence).To(Equal(conf))
			},
			Entry("masked card number line", "Card No: XXXX XXXX XXXX 4321\nName: A", "4321", High),
			Entry("full card number takes the last group", "Card No 1234 5678 9012 3456", "3456", High),
			Entry("account label", "Card No: ****\nAccount ending 9876", "9876", Medium),
			Entry("card label without No", "Your card ending in 5555", "5555", Medium),
			Entry("any four digits", "Ref 7777 issued", "7777", Low),
		)

		It("prefers the High rule even when a weaker one matches earlier in the text", func() {
			f := ex.CardLast4(Header{First: "Account 1111\nCard No: xxxx 2222"})
			Expect(f.Value).NotTo(BeNil())
			Expect(*f.Value).To(Equal("2222"))
			Expect(f.Confidence).To(Equal(High))
		})

		It("misses on text without four digits", func() {
			f := ex.CardLast4(Header{First: "no digits 123 here"})
			Expect(f.Found()).To(BeFalse())
			Expect(f.Confidence).To(Equal(Low))
		})
	})

	Describe("StatementDate", func() {
		It("reads a labelled date with High confidence", func() {
			f := ex.StatementDate(Header{First: "Statement Date: 01 Jan 2024"})
			Expect(f.Value).NotTo(BeNil())
			Expect(*f.Value).To(Equal("2024-01-01"))
			Expect(f.Confidence).To(Equal(High))
		})

		It("accepts the 'as on' label", func() {
			f := ex.StatementDate(Header{First: "Statement as on 15/02/2024"})
			Expect(f.Value).NotTo(BeNil())
			Expect(*f.Value).To(Equal("2024-02-15"))
			Expect(f.Confidence).To(Equal(High))
		})

		It("falls back to the first date in the header", func() {
			f := ex.StatementDate(Header{First: "Statement Date: pending\nIssued: 05 Jan 2024"})
			Expect(f.Value).NotTo(BeNil())
			Expect(*f.Value).To(Equal("2024-01-05"))
			Expect(f.Confidence).To(Equal(Medium))
		})

		It("finds a date on the last scanned line", func() {
			f := ex.StatementDate(Header{First: strings.Repeat("----\n", 59) + "05 Jan 2024"})
			Expect(f.Value).NotTo(BeNil())
			Expect(*f.Value).To(Equal("2024-01-05"))
		})

		It("ignores dates past the scanned lines", func() {
			f := ex.StatementDate(Header{First: strings.Repeat("----\n", 60) + "05 Jan 2024"})
			Expect(f.Found()).To(BeFalse())
			Expect(f.Confidence).To(Equal(Low))
		})

		It("honours a custom line window", func() {
			custom := New(Options{StatementDateLines: 2}, knownDates)
			f := custom.StatementDate(Header{First: "a\nb\n05 Jan 2024"})
			Expect(f.Found()).To(BeFalse())
		})
	})

	Describe("BillingPeriod", func() {
		It("sorts two labelled dates", func() {
			f := ex.BillingPeriod(Header{First: "Statement Period: 31 Jan 2024 to 01 Jan 2024"})
			Expect(f.Value).NotTo(BeNil())
			Expect(*f.Value).To(Equal(Period{From: "2024-01-01", To: "2024-01-31"}))
			Expect(f.Confidence).To(Equal(High))
		})

		It("reads a from/to phrase", func() {
			f := ex.BillingPeriod(Header{First: "Billing Period from January 1, 2024 to January 31, 2024"})
			Expect(f.Value).NotTo(BeNil())
			Expect(f.Value.String()).To(Equal("2024-01-01 to 2024-01-31"))
			Expect(f.Confidence).To(Equal(High))
		})

		It("falls back to the first two distinct dates across two pages", func() {
			f := ex.BillingPeriod(Header{First: "Summary:\n15/02/2024\n15/02/2024", Second: "01 Jan 2024"})
			Expect(f.Value).NotTo(BeNil())
			Expect(*f.Value).To(Equal(Period{From: "2024-01-01", To: "2024-02-15"}))
			Expect(f.Confidence).To(Equal(Medium))
		})

		It("misses with a single date", func() {
			f := ex.BillingPeriod(Header{First: "Summary:\n15/02/2024"})
			Expect(f.Found()).To(BeFalse())
			Expect(f.Confidence).To(Equal(Low))
		})

		DescribeTable("endpoints are always ordered",
			func(text string) {
				f := ex.BillingPeriod(Header{First: text})
				Expect(f.Found()).To(BeTrue())
				Expect(f.Value.From <= f.Value.To).To(BeTrue())
			},
			Entry("reversed label", "Statement Period: 31 Jan 2024 to 01 Jan 2024"),
			Entry("ordered label", "Statement Period: 01 Jan 2024 to 31 Jan 2024"),
			Entry("reversed fallback", "31 Jan 2024\n01 Jan 2024"),
		)
	})

	Describe("Period", func() {
		It("round trips through JSON as text", func() {
			b, err := json.Marshal(NewPeriod("2024-01-31", "2024-01-01"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(Equal(`"2024-01-01 to 2024-01-31"`))

			var p Period
			Expect(json.Unmarshal(b, &p)).To(Succeed())
			Expect(p).To(Equal(Period{From: "2024-01-01", To: "2024-01-31"}))
		})

		It("rejects text without a separator", func() {
			_, err := ParsePeriod("2024-01-01")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Payment", func() {
		It("reads the due date and takes the last amount as the minimum", func() {
			row, ok := ex.Payment(Header{First: "Payment Due Date   Total Amount Due   Minimum Amount Due\n15/02/2024   5,000.00   250.00"})
			Expect(ok).To(BeTrue())
			Expect(row.Columns).To(Equal([]string{"15/02/2024", "5,000.00", "250.00"}))
			Expect(*row.DueDate).To(Equal("2024-02-15"))
			Expect(row.Minimum.Equal(decimal.RequireFromString("250.00"))).To(BeTrue())
		})

		It("skips blank lines and takes a single amount", func() {
			row, ok := ex.Payment(Header{First: "Payment Due Date  Minimum Due\n\n   \n15/02/2024  Rs. 300.00"})
			Expect(ok).To(BeTrue())
			Expect(row.Minimum.Equal(decimal.RequireFromString("300"))).To(BeTrue())
		})

		It("splits on single spaces when there are no wide gaps", func() {
			row, _ := ex.Payment(Header{First: "Payment Due Date\n15/02/2024 300.00"})
			Expect(row.Columns).To(Equal([]string{"15/02/2024", "300.00"}))
		})

		It("reports no row when the heading is the last line", func() {
			_, ok := ex.Payment(Header{First: "Something\nPayment Due Date"})
			Expect(ok).To(BeFalse())
		})

		It("reports no row without a heading", func() {
			_, ok := ex.Payment(Header{First: "15/02/2024 300.00"})
			Expect(ok).To(BeFalse())
		})
	})

	Describe("DueDate", func() {
		It("uses the payment row first", func() {
			f := ex.DueDate(Header{First: "Payment Due Date  Minimum\n15/02/2024  50.00"})
			Expect(f.Value).NotTo(BeNil())
			Expect(*f.Value).To(Equal("2024-02-15"))
			Expect(f.Confidence).To(Equal(High))
		})

		It("falls back to a labelled date", func() {
			f := ex.DueDate(Header{First: "Kindly note\nPlease pay by 15/02/2024"})
			Expect(f.Value).NotTo(BeNil())
			Expect(*f.Value).To(Equal("2024-02-15"))
			Expect(f.Confidence).To(Equal(Medium))
		})

		It("misses without either", func() {
			f := ex.DueDate(Header{First: "nothing to see"})
			Expect(f.Found()).To(BeFalse())
		})
	})

	Describe("TotalBalance", func() {
		It("reads a labelled balance", func() {
			f := ex.TotalBalance(Header{First: "Total Balance: 500.00"})
			Expect(f.Value.Equal(decimal.RequireFromString("500"))).To(BeTrue())
			Expect(f.Confidence).To(Equal(High))
		})

		It("tries labels in their fixed order", func() {
			f := ex.TotalBalance(Header{First: "Total Balance: 99.00\nStatement Balance: Rs. 1,234.50"})
			Expect(f.Value.Equal(decimal.RequireFromString("1234.50"))).To(BeTrue())
		})

		It("moves on when a label has no amount", func() {
			f := ex.TotalBalance(Header{First: "Amount Due: see below\nCurrent Balance  ₹ 2,000.00"})
			Expect(f.Value.Equal(decimal.RequireFromString("2000"))).To(BeTrue())
			Expect(f.Confidence).To(Equal(High))
		})

		It("falls back to the largest absolute amount", func() {
			f := ex.TotalBalance(Header{First: "Purchases 150.00\nPayments (2,500.00)\nFees 10.00"})
			Expect(f.Value.Equal(decimal.RequireFromString("-2500"))).To(BeTrue())
			Expect(f.Confidence).To(Equal(Medium))
		})

		It("keeps the first of equal amounts", func() {
			f := ex.TotalBalance(Header{First: "A 100.00 B (100.00)"})
			Expect(f.Value.Equal(decimal.RequireFromString("100"))).To(BeTrue())
		})

		It("only searches the header window", func() {
			custom := New(Options{BalanceWindow: 20}, knownDates)
			f := custom.TotalBalance(Header{First: strings.Repeat("x", 25) + " Total Balance: 50.00"})
			Expect(f.Found()).To(BeFalse())
			Expect(f.Confidence).To(Equal(Low))
		})
	})

	Describe("Transactions", func() {
		const statement = `Transactions
01/01/2024 AMAZON PURCHASE 1,234.56
05 Jan 2024 SWIGGY ORDER - 250.00
02/01/2024 REFUND (45.00)
Page 2 of 10
15/02/2024 payment received
CLOSING BAL: 3,000.00
Reference number X 01/01/2024 10.00
Feb 30 ADJUSTMENT 12.00`

		var txs []Transaction

		JustBeforeEach(func() {
			txs = ex.Transactions(statement)
		})

		It("keeps only lines with both a leading date and a trailing amount", func() {
			Expect(txs).To(HaveLen(4))
		})

		It("strips the date and amount from the description", func() {
			Expect(txs[0].Description).To(Equal("AMAZON PURCHASE"))
			Expect(*txs[0].Date).To(Equal("2024-01-01"))
			Expect(txs[0].Amount.Equal(decimal.RequireFromString("1234.56"))).To(BeTrue())

			Expect(txs[1].Description).To(Equal("SWIGGY ORDER"))
			Expect(*txs[1].Date).To(Equal("2024-01-05"))
		})

		It("reads bracketed amounts as negative", func() {
			Expect(txs[2].Description).To(Equal("REFUND"))
			Expect(txs[2].Amount.Equal(decimal.RequireFromString("-45"))).To(BeTrue())
		})

		It("keeps a line whose date token does not parse", func() {
			Expect(txs[3].Date).To(BeNil())
			Expect(txs[3].Description).To(Equal("ADJUSTMENT"))
		})

		It("is idempotent", func() {
			Expect(ex.Transactions(statement)).To(Equal(txs))
		})

		It("does not grow when a line is duplicated", func() {
			Expect(ex.Transactions(statement + "\n01/01/2024 AMAZON PURCHASE 1,234.56")).To(HaveLen(4))
		})

		It("treats amounts equal to the cent as duplicates", func() {
			Expect(ex.Transactions("01/01/2024 COFFEE 10.00\n01/01/2024 COFFEE 10.0")).To(HaveLen(1))
		})

		It("compares only the description prefix", func() {
			prefix := strings.Repeat("A", 40)
			out := ex.Transactions("01/01/2024 " + prefix + "X 10.00\n01/01/2024 " + prefix + "Y 10.00")
			Expect(out).To(HaveLen(1))
			Expect(out[0].Description).To(HaveSuffix("X"))
		})

		It("keeps same-description rows with different dates", func() {
			Expect(ex.Transactions("01/01/2024 COFFEE 10.00\n02/01/2024 COFFEE 10.00")).To(HaveLen(2))
		})

		It("returns an empty, non-nil list for empty text", func() {
			out := ex.Transactions("")
			Expect(out).NotTo(BeNil())
			Expect(out).To(BeEmpty())
		})

		It("marshals dates as null and amounts as numbers", func() {
			b, err := json.Marshal(txs[3])
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(Equal(`{"date":null,"description":"ADJUSTMENT","amount":12}`))
		})
	})
})

var _ = Describe("Extractor with the real date parser", func() {
	var ex *Extractor

	BeforeEach(func() {
		now := func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) }
		ex = New(Options{}, normalize.NewDateParser(now))
	})

	It("reads a month-first statement date", func() {
		f := ex.StatementDate(Header{First: "Statement Date: 12/31/2024"})
		Expect(f.Value).NotTo(BeNil())
		Expect(*f.Value).To(Equal("2024-12-31"))
		Expect(f.Confidence).To(Equal(High))
	})

	It("reads a day-first statement date", func() {
		f := ex.StatementDate(Header{First: "Statement Date: 15/02/2024"})
		Expect(f.Value).NotTo(BeNil())
		Expect(*f.Value).To(Equal("2024-02-15"))
	})

	It("dates a transaction from a month-first token", func() {
		txs := ex.Transactions("12/31/2024 AMAZON PURCHASE 10.00")
		Expect(txs).To(HaveLen(1))
		Expect(txs[0].Date).NotTo(BeNil())
		Expect(*txs[0].Date).To(Equal("2024-12-31"))
		Expect(txs[0].Amount.Equal(decimal.RequireFromString("10.00"))).To(BeTrue())
	})
})
