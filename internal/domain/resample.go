package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrNoTimeAxis is returned when an array without a time dimension is
// resampled.
var ErrNoTimeAxis = errors.New("array has no time dimension")

// AnnualSeries holds one value per calendar year, years ascending.
type AnnualSeries struct {
	Years  []int
	Values []float64
}

// Len returns the number of years in the series.
func (s AnnualSeries) Len() int { return len(s.Years) }

// AnnualMean groups the samples of a 1-D time array by calendar year and
// averages each group. NaN samples are ignored; a year with only NaN samples
// is NaN.
func AnnualMean(a *DataArray) (AnnualSeries, error) {
	if !a.HasDim(DimTime) {
		return AnnualSeries{}, fmt.Errorf("annual mean of %q: %w", a.Name, ErrNoTimeAxis)
	}
	if len(a.Dims) != 1 {
		return AnnualSeries{}, fmt.Errorf("annual mean of %q: expected only the time dimension, have %v", a.Name, a.Dims)
	}
	if len(a.Time) != len(a.Values) {
		return AnnualSeries{}, fmt.Errorf("annual mean of %q: %d values but %d decoded times", a.Name, len(a.Values), len(a.Time))
	}

	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[int]*acc)
	years := make([]int, 0)
	for i, v := range a.Values {
		y := a.Time[i].Year
		g, ok := groups[y]
		if !ok {
			g = &acc{}
			groups[y] = g
			years = append(years, y)
		}
		if math.IsNaN(v) {
			continue
		}
		g.sum += v
		g.n++
	}
	slices.Sort(years)

	out := AnnualSeries{Years: years, Values: make([]float64, len(years))}
	for i, y := range years {
		g := groups[y]
		if g.n == 0 {
			out.Values[i] = math.NaN()
			continue
		}
		out.Values[i] = g.sum / float64(g.n)
	}
	return out, nil
}
