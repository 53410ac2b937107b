package table_test

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megandevlan/ADF/internal/adapter/table"
	"github.com/megandevlan/ADF/internal/domain"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func tsRow() domain.StatisticsRow {
	return domain.StatisticsRow{
		Variable: "TS", Unit: "K", Mean: 287.5, SampleSize: 10,
		StdDev: 0.25, StdErr: 0.025, CI95: 0.049,
		Intercept: 250, Slope: 0.0187, PValue: 0.0123,
	}
}

func TestWriter_AppendWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	w := table.NewWriter(dir, "caseA", false, discard())
	require.NoError(t, w.Reset())

	require.NoError(t, w.Append(tsRow()))
	second := tsRow()
	second.Variable, second.Unit, second.PValue = "PRECT", domain.UnknownUnits, math.NaN()
	require.NoError(t, w.Append(second))

	records, err := table.ReadCSV(filepath.Join(dir, "amwg_table_caseA.csv"))
	require.NoError(t, err)

	want := [][]string{
		domain.Columns,
		{"TS", "K", "287.5", "10", "0.25", "0.025", "0.049", " 250.000 +  0.019 t", "0.0123"},
		{"PRECT", "--", "287.5", "10", "0.25", "0.025", "0.049", " 250.000 +  0.019 t", ""},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	assert.NoFileExists(t, w.HTMLPath())
}

func TestWriter_ResetRemovesStaleTables(t *testing.T) {
	dir := t.TempDir()
	w := table.NewWriter(dir, "caseA", true, discard())
	require.NoError(t, os.WriteFile(w.CSVPath(), []byte("old"), 0o600))
	require.NoError(t, os.WriteFile(w.HTMLPath(), []byte("old"), 0o600))

	require.NoError(t, w.Reset())
	assert.NoFileExists(t, w.CSVPath())
	assert.NoFileExists(t, w.HTMLPath())

	// Nothing to remove is fine.
	require.NoError(t, w.Reset())
}

func TestWriter_HTMLMirrorsCSV(t *testing.T) {
	dir := t.TempDir()
	w := table.NewWriter(dir, "caseA", true, discard())
	require.NoError(t, w.Reset())

	row := tsRow()
	row.Mean = 287.456789
	require.NoError(t, w.Append(row))
	nan := tsRow()
	nan.Variable, nan.PValue = "FLNT", math.NaN()
	require.NoError(t, w.Append(nan))

	b, err := os.ReadFile(w.HTMLPath())
	require.NoError(t, err)
	html := string(b)

	assert.Contains(t, html, "<title>amwg_table_caseA</title>")
	assert.Contains(t, html, "<h1>amwg_table_caseA</h1>")
	assert.Contains(t, html, "<th>95% CI</th>")
	assert.Contains(t, html, "<td>287</td>")
	assert.Contains(t, html, "<td>10</td>")
	assert.Contains(t, html, "<td>0.0123</td>")
	assert.Contains(t, html, "<td>NaN</td>")
	assert.Contains(t, html, "<td> 250.000 &#43;  0.019 t</td>")
	assert.Equal(t, 2, strings.Count(html, "<tr>"))
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{280, "280.0"},
		{0, "0.0"},
		{-0.5, "-0.5"},
		{0.1, "0.1"},
		{1e-8, "1e-08"},
		{2.5e16, "2.5e+16"},
		{math.NaN(), ""},
		{math.Inf(1), "inf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, table.FormatFloat(tt.in), "%v", tt.in)
	}
}
