package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// ReadSpreadsheet reads the rows of a CSV or XLSX upload. The format is picked from the file name.
// Blank rows keep their place so that row n of the result is spreadsheet row n+1; trailing blank rows are dropped.
func ReadSpreadsheet(r io.Reader, filename string) ([][]string, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return trimTrailingBlankRows(rows), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var rows [][]string
	next := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read csv")
		}
		// csv.Reader skips empty lines; put them back so rows line up with the file
		line, _ := reader.FieldPos(0)
		for ; next < line; next++ {
			rows = append(rows, nil)
		}
		last := len(row) - 1
		end, _ := reader.FieldPos(last)
		next = end + strings.Count(row[last], "\n") + 1
		rows = append(rows, row)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		// Excel writes a UTF-8 BOM in front of CSV exports
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheets[0])
	}
	return rows, nil
}

func trimTrailingBlankRows(rows [][]string) [][]string {
	n := len(rows)
	for n > 0 && isBlankRow(rows[n-1]) {
		n--
	}
	return rows[:n]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cell returns row[i] trimmed, or "" when the row is short
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
