// Package batch labels every report in a CSV file and writes a True/False
// matrix with one column per category.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultReportColumn is the header holding report text.
const DefaultReportColumn = "Report Impression"

// ErrMissingColumn reports that the input lacks the report column.
var ErrMissingColumn = errors.New("report column not found")

// Row is one report read from the input file.
type Row struct {
	ID     string
	Report string
}

// ReadOptions selects the columns to read. Both accept a header name or a
// 1-based "#N" position.
type ReadOptions struct {
	ReportColumn string
	IDColumn     string
}

// Delimiter returns the field separator implied by the file extension.
func Delimiter(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// ReadFile reads rows from a CSV or TSV file.
func ReadFile(path string, opts ReadOptions) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	rows, err := Read(f, Delimiter(path), opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// Read parses delimited rows with a mandatory header. Rows keep input order.
// Without an id column each row is identified by its 0-based index.
func Read(r io.Reader, comma rune, opts ReadOptions) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file: %w", ErrMissingColumn)
	}
	header := make([]string, len(records[0]))
	for i, cell := range records[0] {
		header[i] = cleanCell(cell)
	}

	reportName := strings.TrimSpace(opts.ReportColumn)
	if reportName == "" {
		reportName = DefaultReportColumn
	}
	reportCol, err := matchColumn(header, reportName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, reportName)
	}
	idCol := -1
	if strings.TrimSpace(opts.IDColumn) != "" {
		if idCol, err = matchColumn(header, opts.IDColumn); err != nil {
			return nil, err
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		row := Row{ID: strconv.Itoa(i)}
		if reportCol < len(record) {
			row.Report = record[reportCol]
		}
		if idCol >= 0 && idCol < len(record) {
			if id := cleanCell(record[idCol]); id != "" {
				row.ID = id
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}

func matchColumn(header []string, name string) (int, error) {
	trimmed := strings.TrimSpace(name)
	for i, col := range header {
		if strings.EqualFold(col, trimmed) {
			return i, nil
		}
	}
	if strings.HasPrefix(trimmed, "#") {
		idx, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
		if err != nil || idx <= 0 {
			return -1, fmt.Errorf("invalid column index %q", name)
		}
		if idx > len(header) {
			return -1, fmt.Errorf("column index %s is out of range", trimmed)
		}
		return idx - 1, nil
	}
	return -1, fmt.Errorf("column %q not found", name)
}
