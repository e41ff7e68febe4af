package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"meeting-brief-service/internal/domain"
)

// Date shapes that disqualify a cell from signalling a header row:
// 2024-01-31, 31/01/2024, 1-31-24 and friends.
var datePattern = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$|^\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}$`)

// looksLikeHeader reports whether a first row reads as column labels: at
// least one cell that is non-empty, non-numeric and not date-shaped.
//
// The heuristic is ambiguous by nature (an all-text data row also matches);
// it is preserved as-is for behavioral compatibility.
func looksLikeHeader(row []string) bool {
	for _, cell := range row {
		c := strings.TrimSpace(cell)
		if c == "" {
			continue
		}
		if _, err := strconv.ParseFloat(c, 64); err == nil {
			continue
		}
		if datePattern.MatchString(c) {
			continue
		}
		return true
	}
	return false
}

// rowsTranscript renders parsed rows as a human-readable transcript: the
// column list, then one block per data row listing "header: value" pairs.
// Falsy values (0, false, the empty string) are kept as explicit content.
func rowsTranscript(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	var headers []string
	data := rows
	if looksLikeHeader(rows[0]) {
		headers = make([]string, 0, width)
		for i := 0; i < width; i++ {
			if i < len(rows[0]) && strings.TrimSpace(rows[0][i]) != "" {
				headers = append(headers, strings.TrimSpace(rows[0][i]))
			} else {
				headers = append(headers, fmt.Sprintf("column_%d", i+1))
			}
		}
		data = rows[1:]
	} else {
		headers = make([]string, 0, width)
		for i := 0; i < width; i++ {
			headers = append(headers, fmt.Sprintf("column_%d", i+1))
		}
	}

	var b strings.Builder
	b.WriteString("Columns: ")
	b.WriteString(strings.Join(headers, ", "))
	b.WriteString("\n")

	for i, row := range data {
		b.WriteString(fmt.Sprintf("\nRow %d:\n", i+1))
		for j, h := range headers {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			b.WriteString(h)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (e *Extractor) extractCSV(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: csv: %v", domain.ErrParseFailure, err)
	}
	return rowsTranscript(rows), nil
}

// extractXLSX renders each sheet independently, concatenated in workbook
// order with sheet-name banners.
func (e *Extractor) extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: xlsx: %v", domain.ErrParseFailure, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("%w: xlsx sheet %q: %v", domain.ErrParseFailure, sheet, err)
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sheetBanner(sheet))
		b.WriteString("\n")
		b.WriteString(rowsTranscript(rows))
	}
	return b.String(), nil
}

func (e *Extractor) extractXLS(data []byte) (string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", fmt.Errorf("%w: xls: %v", domain.ErrParseFailure, err)
	}

	var b strings.Builder
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			var cells []string
			for c := 0; c <= row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sheetBanner(sheet.Name))
		b.WriteString("\n")
		b.WriteString(rowsTranscript(rows))
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: xls: workbook has no sheets", domain.ErrParseFailure)
	}
	return b.String(), nil
}

func sheetBanner(name string) string {
	return fmt.Sprintf("=== Sheet: %s ===", name)
}
