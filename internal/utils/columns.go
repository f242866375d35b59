package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/shopspring/decimal"
)

// patternThreshold is the share of sampled values a column must match to be picked by pattern
const patternThreshold = 0.6

const patternSample = 50

// ColumnSpec describes one target field of an import
type ColumnSpec struct {
	Field    string
	Synonyms []string
	Pattern  func(string) bool
}

// Detection is the result of DetectColumns
type Detection struct {
	// Index maps a field to its column; missing fields were not found
	Index     map[string]int
	HasHeader bool
	Header    []string
	// HeaderRow is the index of the first non-blank row, the header when HasHeader is set
	HeaderRow int
}

// DetectColumns locates each spec's column. Header cells are matched against the
// synonyms first; fields still missing are picked by value pattern. When no header
// cell matches at all, the first row is treated as data. Leading blank rows are skipped.
func DetectColumns(rows [][]string, specs []ColumnSpec) Detection {
	d := Detection{Index: make(map[string]int)}
	for d.HeaderRow < len(rows) && isBlankRow(rows[d.HeaderRow]) {
		d.HeaderRow++
	}
	if d.HeaderRow == len(rows) {
		return d
	}
	first := rows[d.HeaderRow]

	taken := make(map[int]bool)
	for _, spec := range specs {
		if i := findColumnIndex(first, spec.Synonyms, taken); i >= 0 {
			d.Index[spec.Field] = i
			taken[i] = true
		}
	}
	d.HasHeader = len(d.Index) > 0
	if d.HasHeader {
		d.Header = first
	}

	data := rows[d.HeaderRow:]
	if d.HasHeader {
		data = data[1:]
	}
	if len(data) > patternSample {
		data = data[:patternSample]
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	for _, spec := range specs {
		if _, ok := d.Index[spec.Field]; ok || spec.Pattern == nil {
			continue
		}
		best, bestScore := -1, 0.0
		for col := 0; col < width; col++ {
			if taken[col] {
				continue
			}
			if score := patternScore(data, col, spec.Pattern); score >= patternThreshold && score > bestScore {
				best, bestScore = col, score
			}
		}
		if best >= 0 {
			d.Index[spec.Field] = best
			taken[best] = true
		}
	}
	return d
}

// Columns describes the mapping for clients: field -> header text, or "column N" without a header
func (d Detection) Columns() map[string]string {
	out := make(map[string]string, len(d.Index))
	for field, i := range d.Index {
		if d.HasHeader && i < len(d.Header) && strings.TrimSpace(d.Header[i]) != "" {
			out[field] = strings.TrimSpace(d.Header[i])
		} else {
			out[field] = fmt.Sprintf("column %d", i+1)
		}
	}
	return out
}

// Rows extracts the non-blank data rows keyed by field. Row numbers are 1-based spreadsheet rows.
func (d Detection) Rows(rows [][]string) []models.ImportRow {
	start := d.HeaderRow
	if d.HasHeader {
		start++
	}
	out := make([]models.ImportRow, 0, len(rows))
	for n := start; n < len(rows); n++ {
		if isBlankRow(rows[n]) {
			continue
		}
		data := make(map[string]string, len(d.Index))
		for field, i := range d.Index {
			data[field] = cell(rows[n], i)
		}
		out = append(out, models.ImportRow{Row: n + 1, Data: data})
	}
	return out
}

func findColumnIndex(header []string, possibleNames []string, taken map[int]bool) int {
	for i, h := range header {
		if taken[i] {
			continue
		}
		h = normalizeHeader(h)
		for _, name := range possibleNames {
			if normalizeHeader(name) == h {
				return i
			}
		}
	}
	return -1
}

// normalizeHeader lowercases and drops everything but letters and digits, so "Student No." == "studentno"
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func patternScore(rows [][]string, col int, match func(string) bool) float64 {
	var seen, hits int
	for _, row := range rows {
		v := cell(row, col)
		if v == "" {
			continue
		}
		seen++
		if match(v) {
			hits++
		}
	}
	if seen == 0 {
		return 0
	}
	return float64(hits) / float64(seen)
}

var (
	studentIDPattern  = regexp.MustCompile(`^[A-Za-z]{0,3}\d{2,4}[-\s]?\d{3,7}$`)
	courseCodePattern = regexp.MustCompile(`^[A-Z]{2,8}([-\s][A-Z0-9]{1,6})?$`)
	emailPattern      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	yearLevelPattern  = regexp.MustCompile(`(?i)^([1-6])(st|nd|rd|th)?(\s*year)?$`)
	namePattern       = regexp.MustCompile(`^[\p{L}][\p{L}' .-]*$`)
	receiptPattern    = regexp.MustCompile(`^OR-\d+-[A-Z0-9]+$`)
)

// IsStudentID matches school id numbers such as "2021-00123" or "A20211234"
func IsStudentID(s string) bool { return studentIDPattern.MatchString(strings.TrimSpace(s)) }

// IsCourseCode matches upper-case course codes such as "BSCS" or "BSED-MATH"
func IsCourseCode(s string) bool { return courseCodePattern.MatchString(strings.TrimSpace(s)) }

func IsEmail(s string) bool { return emailPattern.MatchString(strings.TrimSpace(s)) }

func IsName(s string) bool {
	s = strings.TrimSpace(s)
	return namePattern.MatchString(s) && !IsCourseCode(s)
}

func IsYearLevel(s string) bool { return yearLevelPattern.MatchString(strings.TrimSpace(s)) }

func IsReceiptNo(s string) bool { return receiptPattern.MatchString(strings.TrimSpace(s)) }

// IsAmount matches positive decimal amounts, allowing thousands separators and a currency sign
func IsAmount(s string) bool {
	d, err := ParseAmount(s)
	return err == nil && d.IsPositive()
}

func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// ParseYearLevel accepts "3", "3rd" or "3rd year"
func ParseYearLevel(s string) (int, error) {
	m := yearLevelPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid year level: %q", s)
	}
	return strconv.Atoi(m[1])
}

// ParseAmount parses a money value, ignoring currency signs and thousands separators
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("invalid amount: %q", s)
	}
	return decimal.NewFromString(cleaned)
}

// ParseDate parses a date string in various formats
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)

	formats := []string{
		"2006-01-02",
		"01/02/2006",
		"1/2/2006",
		"01-02-06",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2006-01-02 15:04:05",
		"01/02/2006 15:04:05",
		time.RFC3339,
	}
	for _, format := range formats {
		if date, err := time.Parse(format, dateStr); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}
