package lending

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

var reportColumns = []struct {
	title string
	width float64
	align string
}{
	{"STUDENT", 44, "L"},
	{"BOOK", 56, "L"},
	{"DUE", 24, "C"},
	{"DAYS", 16, "R"},
	{"FINE (Rs.)", 24, "R"},
	{"APPLIED", 18, "C"},
}

// WriteOverdueReport renders the overdue list as an A4 PDF.
func WriteOverdueReport(w io.Writer, items []OverdueItem, sum Summary, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()
	// Core fonts are cp1252; names go through the translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Overdue Books Report")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "As of "+generatedAt.Format(DateLayout))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	sumW := []float64{60, 60, 62}
	pdf.CellFormat(sumW[0], 10, "Fine rate / day (Rs.)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Overdue books", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Pending fines (Rs.)", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, sum.FineRate.String(), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, fmt.Sprint(sum.OverdueCount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, sum.TotalPendingFines.String(), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	writeReportHeader(pdf)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(30, 30, 30)

	if len(items) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, "No overdue books", "1", 1, "C", false, 0, "")
	}

	for _, it := range items {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			writeReportHeader(pdf)
			pdf.SetFont("Helvetica", "", 9)
		}

		applied := "no"
		if it.FineAmount != nil {
			applied = it.FineAmount.String()
		}
		cells := []string{
			tr(trimTo(it.StudentName, 26)),
			tr(trimTo(it.BookTitle, 34)),
			it.DueDate.Format(DateLayout),
			fmt.Sprint(it.DaysOverdue),
			it.FineDue.String(),
			applied,
		}
		for i, c := range reportColumns {
			ln := 0
			if i == len(reportColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(c.width, 8, cells[i], "1", ln, c.align, false, 0, "")
		}
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated "+generatedAt.Format(time.RFC3339), "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

func writeReportHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetTextColor(20, 20, 20)
	for i, c := range reportColumns {
		ln := 0
		if i == len(reportColumns)-1 {
			ln = 1
		}
		pdf.CellFormat(c.width, 8, c.title, "1", ln, "C", true, 0, "")
	}
}

// trimTo shortens s to at most max runes.
func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
