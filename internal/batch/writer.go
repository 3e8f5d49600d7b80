package batch

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"yashubustudio/clinicalreport/labeler"
)

// IDHeader names the identifier column of the output file.
const IDHeader = "Report_ID"

// DefaultOutputPath returns batch_results_YYYYMMDD_HHMMSS.csv inside dir.
func DefaultOutputPath(dir string, now time.Time) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, fmt.Sprintf("batch_results_%s.csv", now.Format("20060102_150405")))
}

// WriteResults writes one line per row with True/False per category. The
// file appears only once fully written.
func WriteResults(path string, categories []labeler.Category, rows []Row, results []labeler.ObservationMap) error {
	if len(rows) != len(results) {
		return fmt.Errorf("write results: %d rows but %d results", len(rows), len(results))
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".batch-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	w := csv.NewWriter(tmp)
	header := make([]string, 0, len(categories)+1)
	header = append(header, IDHeader)
	for _, c := range categories {
		header = append(header, string(c))
	}
	if err := w.Write(header); err != nil {
		cleanup()
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(header))
	for i, row := range rows {
		record[0] = row.ID
		for j, c := range categories {
			record[j+1] = boolCell(results[i][c])
		}
		if err := w.Write(record); err != nil {
			cleanup()
			return fmt.Errorf("write row %s: %w", row.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		cleanup()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

func boolCell(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
