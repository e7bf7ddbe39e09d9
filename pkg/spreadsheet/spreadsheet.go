// Package spreadsheet turns uploaded .xlsx, .xls and .csv files into header keyed records.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Format identifies a supported workbook encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// maxXLSRows bounds legacy workbook reads.
const maxXLSRows = 100000

// ErrUnsupportedFormat is returned for extensions other than xlsx, xls and csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// ErrEmptySheet is returned when the first sheet has no header row.
var ErrEmptySheet = errors.New("worksheet is empty")

// Record is one data row keyed by its lowercased header.
type Record map[string]any

// DetectFormat maps a filename extension onto a Format.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "xlsx", "xlsm":
		return FormatXLSX, nil
	case "xls":
		return FormatXLS, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Parse reads the first sheet of the upload named filename.
func Parse(filename string, r io.Reader) ([]Record, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return ParseBytes(format, data)
}

// ParseBytes decodes data in the given format. The first non-empty row is the header;
// empty rows are ignored and empty cells are omitted from records.
func ParseBytes(format Format, data []byte) ([]Record, error) {
	rows, err := readRows(format, data)
	if err != nil {
		return nil, err
	}
	return toRecords(rows)
}

func readRows(format Format, data []byte) ([][]string, error) {
	switch format {
	case FormatCSV:
		reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		return rows, nil
	case FormatXLS:
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("open xls: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, ErrEmptySheet
		}
		return workbook.ReadAllCells(maxXLSRows), nil
	case FormatXLSX:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, ErrEmptySheet
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("read xlsx rows: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func toRecords(rows [][]string) ([]Record, error) {
	headerAt := -1
	for i, row := range rows {
		if !blank(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrEmptySheet
	}

	header := make([]string, len(rows[headerAt]))
	for i, cell := range rows[headerAt] {
		header[i] = strings.ToLower(CleanCell(cell))
	}

	records := make([]Record, 0, len(rows)-headerAt-1)
	for _, row := range rows[headerAt+1:] {
		if blank(row) {
			continue
		}
		record := make(Record, len(header))
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if value := CleanCell(cell); value != "" {
				record[header[i]] = value
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if CleanCell(cell) != "" {
			return false
		}
	}
	return true
}

// CleanCell trims whitespace and a leading byte order mark, unwraps the Excel text
// formula ="..." and strips one pair of matching surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	if len(s) >= 3 && strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		return strings.TrimSpace(s[2 : len(s)-1])
	}
	if len(s) >= 2 {
		if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
