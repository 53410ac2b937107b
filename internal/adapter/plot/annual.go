// Package plot draws annual-mean series with their fitted trend line.
package plot

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/megandevlan/ADF/internal/domain"
)

// Plotter writes one PNG per (case, variable) into an output directory.
type Plotter struct {
	outputDir string
}

// NewPlotter creates a Plotter writing into outputDir.
func NewPlotter(outputDir string) *Plotter {
	return &Plotter{outputDir: outputDir}
}

// Path returns the image path for a case and variable.
func (p *Plotter) Path(caseName, variable string) string {
	return filepath.Join(p.outputDir, fmt.Sprintf("amwg_table_%s_%s_ANN.png", caseName, variable))
}

// PlotAnnualSeries saves a scatter of the annual means and, when the trend
// is finite, the fitted line across the covered years. Years with a NaN mean
// are left out. A series with no finite values writes nothing.
func (p *Plotter) PlotAnnualSeries(row domain.StatisticsRow, series domain.AnnualSeries) (string, error) {
	pts := make(plotter.XYs, 0, series.Len())
	for i, y := range series.Years {
		v := series.Values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(y), Y: v})
	}
	if len(pts) == 0 {
		return "", nil
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("%s %s annual mean", row.Case, row.Variable)
	pl.X.Label.Text = "Year"
	pl.Y.Label.Text = fmt.Sprintf("%s [%s]", row.Variable, row.Unit)

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return "", fmt.Errorf("plot %s/%s: %w", row.Case, row.Variable, err)
	}
	s.Color = color.RGBA{R: 50, G: 50, B: 255, A: 255}
	pl.Add(s)

	if !math.IsNaN(row.Slope) && !math.IsNaN(row.Intercept) {
		x0, x1 := pts[0].X, pts[len(pts)-1].X
		l, err := plotter.NewLine(plotter.XYs{
			{X: x0, Y: row.Intercept + row.Slope*x0},
			{X: x1, Y: row.Intercept + row.Slope*x1},
		})
		if err != nil {
			return "", fmt.Errorf("plot %s/%s trend: %w", row.Case, row.Variable, err)
		}
		l.Color = color.RGBA{R: 255, A: 255}
		l.LineStyle.Width = vg.Points(2)
		pl.Add(l)
		pl.Legend.Add(row.Trend(), l)
	}

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create plot directory: %w", err)
	}
	path := p.Path(row.Case, row.Variable)
	if err := pl.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save plot %s: %w", path, err)
	}
	return path, nil
}
