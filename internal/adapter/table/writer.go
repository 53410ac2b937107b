// Package table writes per-case statistics tables as CSV, with an optional
// HTML rendering of the same rows.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/megandevlan/ADF/internal/domain"
)

// Writer appends statistics rows for one case.
type Writer struct {
	caseName string
	csvPath  string
	htmlPath string
	html     bool
	logger   *slog.Logger
}

// NewWriter returns a Writer for amwg_table_<case>.csv in outputDir. When
// html is set every append also rewrites amwg_table_<case>.html.
func NewWriter(outputDir, caseName string, html bool, logger *slog.Logger) *Writer {
	base := "amwg_table_" + caseName
	return &Writer{
		caseName: caseName,
		csvPath:  filepath.Join(outputDir, base+".csv"),
		htmlPath: filepath.Join(outputDir, base+".html"),
		html:     html,
		logger:   logger,
	}
}

// CSVPath returns the path of the CSV table.
func (w *Writer) CSVPath() string { return w.csvPath }

// HTMLPath returns the path of the HTML table.
func (w *Writer) HTMLPath() string { return w.htmlPath }

// Reset creates the output directory if needed and removes tables left by a
// previous run.
func (w *Writer) Reset() error {
	if err := os.MkdirAll(filepath.Dir(w.csvPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, p := range []string{w.csvPath, w.htmlPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove stale table: %w", err)
		}
	}
	return nil
}

// Append writes one row, adding the header when the file is new.
func (w *Writer) Append(row domain.StatisticsRow) error {
	f, err := os.OpenFile(w.csvPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open table: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat table: %w", err)
	}

	cw := csv.NewWriter(f)
	if fi.Size() == 0 {
		_ = cw.Write(domain.Columns)
	}
	_ = cw.Write(Record(row))
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write table row: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close table: %w", err)
	}

	if w.html {
		if err := RenderHTML(w.csvPath, w.htmlPath); err != nil {
			return err
		}
	}
	w.logger.Debug("table row written", "case", w.caseName, "variable", row.Variable, "path", w.csvPath)
	return nil
}

// Record returns the CSV cells of a row in column order.
func Record(r domain.StatisticsRow) []string {
	return []string{
		r.Variable,
		r.Unit,
		FormatFloat(r.Mean),
		strconv.Itoa(r.SampleSize),
		FormatFloat(r.StdDev),
		FormatFloat(r.StdErr),
		FormatFloat(r.CI95),
		r.Trend(),
		FormatFloat(r.PValue),
	}
}

// FormatFloat renders v in shortest round-trip form, always with a decimal
// point or exponent. NaN renders as an empty cell.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ReadCSV returns all records of a table, header first.
func ReadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	return records, nil
}
