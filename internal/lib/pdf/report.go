// Package pdf renders the transaction report as a PDF document.
package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	margin     = 12.0
	rowHeight  = 6.0
	headHeight = 7.0
)

// Report is the content of an exported report.
type Report struct {
	Title       string
	Owner       string
	GeneratedAt time.Time
	Summary     model.Summary
	Rows        []model.TableRow
}

type column struct {
	title string
	width float64
	align string
	value func(model.TableRow) string
}

var columns = []column{
	{"Date", 22, "L", func(r model.TableRow) string { return r.Date.String() }},
	{"Description", 52, "L", func(r model.TableRow) string { return r.Description }},
	{"Category", 30, "L", func(r model.TableRow) string { return r.CategoryName }},
	{"Account", 30, "L", func(r model.TableRow) string { return r.AccountName }},
	{"Amount", 25, "R", func(r model.TableRow) string { return model.FormatMoney(r.SignedAmount) }},
	{"Running", 27, "R", func(r model.TableRow) string { return model.FormatMoney(r.RunningTotal) }},
}

// Build lays out the document: a summary block followed by the transaction
// table, which repeats its header on every page.
func Build(r Report) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(r.Title, true)
	pdf.SetAuthor("BudgetBud", false)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetModificationDate(r.GeneratedAt)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeTitle(pdf, tr, r)
	writeSummary(pdf, r.Summary)
	writeTable(pdf, tr, r.Rows)

	return pdf
}

// Render writes the document to w.
func Render(w io.Writer, r Report) error {
	pdf := Build(r)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func writeTitle(pdf *fpdf.Fpdf, tr func(string) string, r Report) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(47, 133, 90)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	line := "Generated " + r.GeneratedAt.Format("2006-01-02 15:04")
	if r.Owner != "" {
		line = tr(r.Owner) + " - " + line
	}
	pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writeSummary(pdf *fpdf.Fpdf, s model.Summary) {
	period := "All time"
	switch {
	case s.Start != nil && s.End != nil:
		period = s.Start.String() + " to " + s.End.String()
	case s.Start != nil:
		period = "From " + s.Start.String()
	case s.End != nil:
		period = "Until " + s.End.String()
	}

	rows := [][2]string{
		{"Period", period},
		{"Income", model.FormatMoney(s.Income)},
		{"Expense", model.FormatMoney(s.Expense)},
		{"Net", model.FormatMoney(s.Net)},
		{"Transactions", fmt.Sprintf("%d", s.Transactions)},
		{"Total balance", model.FormatMoney(s.TotalBalance)},
	}
	if s.TopCategory != nil {
		rows = append(rows, [2]string{"Top category", s.TopCategory.CategoryName + " (" + model.FormatMoney(s.TopCategory.Total) + ")"})
	}

	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, rowHeight, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, rowHeight, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func writeHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(47, 133, 90)
	pdf.SetTextColor(255, 255, 255)
	for _, c := range columns {
		pdf.CellFormat(c.width, headHeight, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, rows []model.TableRow) {
	_, pageHeight := pdf.GetPageSize()
	limit := pageHeight - margin - 8

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, rowHeight, "No transactions in this period.", "", 1, "L", false, 0, "")
		return
	}

	writeHeader(pdf)
	for i, row := range rows {
		if pdf.GetY()+rowHeight > limit {
			pdf.AddPage()
			writeHeader(pdf)
		}

		fill := i%2 == 1
		pdf.SetFillColor(240, 244, 242)
		for _, c := range columns {
			text := tr(truncate(pdf, c.value(row), c.width-2))
			if c.title == "Amount" {
				setAmountColor(pdf, row.SignedAmount)
			}
			pdf.CellFormat(c.width, rowHeight, text, "LR", 0, c.align, fill, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(-1)
	}

	total := 0.0
	for _, c := range columns {
		total += c.width
	}
	pdf.CellFormat(total, 0, "", "T", 1, "", false, 0, "")
}

func setAmountColor(pdf *fpdf.Fpdf, amount decimal.Decimal) {
	if amount.IsNegative() {
		pdf.SetTextColor(197, 48, 48)
		return
	}
	pdf.SetTextColor(47, 133, 90)
}

// truncate shortens s with an ellipsis so it fits width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
