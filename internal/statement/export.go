package statement

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/zombor/statement-extractor/internal/extract"
	"github.com/zombor/statement-extractor/internal/pipeline"
)

// ResultJSON encodes a full result and checks it against the result schema.
func ResultJSON(r pipeline.ExtractionResult) ([]byte, error) {
	if r.Transactions == nil {
		r.Transactions = []extract.Transaction{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	if err := ValidateResultJSON(data); err != nil {
		return nil, err
	}
	return data, nil
}

// MinimalJSON encodes the short form of a result.
func MinimalJSON(r pipeline.ExtractionResult) ([]byte, error) {
	data, err := json.MarshalIndent(r.Minimal(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling minimal result: %w", err)
	}
	return data, nil
}

// TransactionsCSV writes the transactions with a date,description,amount header.
func TransactionsCSV(txs []extract.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "description", "amount"}); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, tx := range txs {
		date := ""
		if tx.Date != nil {
			date = *tx.Date
		}
		if err := w.Write([]string{date, tx.Description, tx.Amount.StringFixed(2)}); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

const (
	summarySheet      = "Summary"
	transactionsSheet = "Transactions"
)

// XLSX builds a workbook with a Summary sheet of fields and a Transactions sheet.
func XLSX(r pipeline.ExtractionResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("naming summary sheet: %w", err)
	}
	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return nil, fmt.Errorf("adding transactions sheet: %w", err)
	}

	summary := [][]any{
		{"Field", "Value", "Confidence"},
		{"Source", r.SourceID, ""},
		{"Card last 4", str(r.CardLast4), r.CardLast4Confidence.String()},
		{"Statement date", str(r.StatementDate), r.StatementDateConfidence.String()},
		{"Billing period", period(r.BillingPeriod), r.BillingPeriodConfidence.String()},
		{"Due date", str(r.DueDate), ""},
		{"Total balance", amount(r.TotalBalance), r.TotalBalanceConfidence.String()},
		{"Minimum payment due", amount(r.MinimumPaymentDue), ""},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return nil, err
	}

	rows := [][]any{{"Date", "Description", "Amount"}}
	for _, tx := range r.Transactions {
		rows = append(rows, []any{str(tx.Date), tx.Description, tx.Amount.InexactFloat64()})
	}
	if err := writeRows(f, transactionsSheet, rows); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 22)
	_ = f.SetColWidth(summarySheet, "B", "B", 28)
	_ = f.SetColWidth(summarySheet, "C", "C", 12)
	_ = f.SetColWidth(transactionsSheet, "A", "A", 12)
	_ = f.SetColWidth(transactionsSheet, "B", "B", 48)
	_ = f.SetColWidth(transactionsSheet, "C", "C", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func period(p *extract.Period) string {
	if p == nil {
		return ""
	}
	return p.String()
}

func amount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

// Format is an export encoding of a result
type Format struct {
	Name        string
	ContentType string
	Encode      func(r pipeline.ExtractionResult) ([]byte, error)
}

var (
	FormatResultJSON = Format{Name: "result.json", ContentType: "application/json", Encode: ResultJSON}
	FormatMinimal    = Format{Name: "minimal.json", ContentType: "application/json", Encode: MinimalJSON}
	FormatCSV        = Format{Name: "transactions.csv", ContentType: "text/csv; charset=utf-8", Encode: func(r pipeline.ExtractionResult) ([]byte, error) {
		return TransactionsCSV(r.Transactions)
	}}
	FormatXLSX = Format{Name: "statement.xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Encode: XLSX}
)

// Formats are the exports served per statement
var Formats = []Format{FormatResultJSON, FormatMinimal, FormatCSV, FormatXLSX}
