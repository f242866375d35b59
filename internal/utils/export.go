package utils

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Table is a titled grid of strings rendered by the export writers
type Table struct {
	Title    string
	Subtitle string
	Header   []string
	Rows     [][]string
	// Widths are PDF column widths in millimetres; columns share the page evenly when empty
	Widths []float64
	Footer []string
}

// WriteCSV writes the header, rows and footer of t as CSV
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	if len(t.Footer) > 0 {
		if err := writer.Write(t.Footer); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes t to the first sheet of a new workbook
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	write := func(n int, values []string) error {
		cellRef, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
		}
		return f.SetSheetRow(sheet, cellRef, &row)
	}

	n := 1
	if err := write(n, t.Header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for _, r := range t.Rows {
		n++
		if err := write(n, r); err != nil {
			return errors.Wrapf(err, "failed to write row %d", n)
		}
	}
	if len(t.Footer) > 0 {
		if err := write(n+1, t.Footer); err != nil {
			return errors.Wrap(err, "failed to write footer")
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(t.Header), 1)
		_ = f.SetCellStyle(sheet, "A1", last, bold)
	}
	return f.Write(w)
}

// WriteTablePDF renders t as a landscape A4 report
func WriteTablePDF(w io.Writer, t Table) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)

	widths := t.Widths
	if len(widths) != len(t.Header) {
		pageW, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		widths = make([]float64, len(t.Header))
		for i := range widths {
			widths[i] = (pageW - left - right) / float64(len(t.Header))
		}
	}

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range t.Header {
			pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 7, tr(t.Title), "", 1, "L", false, 0, "")
		if t.Subtitle != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.CellFormat(0, 5, tr(t.Subtitle), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
		header()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	for _, row := range t.Rows {
		for i := range t.Header {
			pdf.CellFormat(widths[i], 6, tr(fit(pdf, cell(row, i), widths[i])), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(t.Footer) > 0 {
		pdf.SetFont("Helvetica", "B", 8)
		for i := range t.Header {
			pdf.CellFormat(widths[i], 6, tr(cell(t.Footer, i)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// Receipt is the content of an official receipt
type Receipt struct {
	Number       string
	Date         string
	Term         string
	StudentID    string
	StudentName  string
	Course       string
	Organization string
	Category     string
	Amount       string
	Remarks      string
	IssuedBy     string
}

// WriteReceiptPDF renders a half-letter official receipt
func WriteReceiptPDF(w io.Writer, r Receipt) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 140, Ht: 216},
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(0, 8, tr(r.Organization), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "OFFICIAL RECEIPT", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, tr(r.Term), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, tr(value), "B", 1, "L", false, 0, "")
	}
	line("Receipt No.", r.Number)
	line("Date", r.Date)
	line("Student ID", r.StudentID)
	line("Name", r.StudentName)
	line("Course", r.Course)
	line("Payment for", r.Category)
	line("Amount", r.Amount)
	if r.Remarks != "" {
		line("Remarks", r.Remarks)
	}
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, tr("Received by: "+r.IssuedBy), "", 1, "R", false, 0, "")

	return pdf.Output(w)
}

// fit truncates s with an ellipsis so it fits in width millimetres
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	const pad = 2
	if pdf.GetStringWidth(s) <= width-pad {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width-pad {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
