package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadSpreadsheetCSV(t *testing.T) {
	input := "\ufeffStudent ID,Name\n2021-00123,Juan\n,\n2021-00124,Maria\n,\n\n"

	rows, err := ReadSpreadsheet(strings.NewReader(input), "students.CSV")

	require.NoError(t, err)
	require.Len(t, rows, 4, "interior blank rows keep their place, trailing ones are dropped")
	assert.Equal(t, "Student ID", rows[0][0])
	assert.Equal(t, []string{"", ""}, rows[2])
	assert.Equal(t, []string{"2021-00124", "Maria"}, rows[3])
}

func TestReadSpreadsheetXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Student ID", "Course"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"2021-00123", "BSCS"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ReadSpreadsheet(buf, "students.xlsx")

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Student ID", "Course"}, {"2021-00123", "BSCS"}}, rows)
}

func TestReadSpreadsheetUnsupported(t *testing.T) {
	_, err := ReadSpreadsheet(strings.NewReader("x"), "students.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportWriters(t *testing.T) {
	table := Table{
		Title:  "Transactions",
		Header: []string{"Receipt", "Student", "Amount"},
		Rows:   [][]string{{"OR-12024-AAAA0000", "Dela Cruz, Juan", "150.00"}},
		Footer: []string{"", "Total", "150.00"},
	}

	var csvOut bytes.Buffer
	require.NoError(t, WriteCSV(&csvOut, table))
	assert.Equal(t, "Receipt,Student,Amount\nOR-12024-AAAA0000,\"Dela Cruz, Juan\",150.00\n,Total,150.00\n", csvOut.String())

	var xlsxOut bytes.Buffer
	require.NoError(t, WriteXLSX(&xlsxOut, table))
	rows, err := ReadSpreadsheet(&xlsxOut, "export.xlsx")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	var pdfOut bytes.Buffer
	require.NoError(t, WriteTablePDF(&pdfOut, table))
	assert.True(t, bytes.HasPrefix(pdfOut.Bytes(), []byte("%PDF")))

	var receiptOut bytes.Buffer
	require.NoError(t, WriteReceiptPDF(&receiptOut, Receipt{Number: "OR-12024-AAAA0000", Organization: "Computer Society", Amount: "150.00"}))
	assert.True(t, bytes.HasPrefix(receiptOut.Bytes(), []byte("%PDF")))
}
