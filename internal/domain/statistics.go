package domain

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ci95Factor is the two-sided 95% quantile of the standard normal.
const ci95Factor = 1.96

// tiny keeps the slope t-statistic finite for a perfect fit (|r| == 1).
const tiny = 1.0e-20

// ErrEmptySeries is returned when statistics are requested for zero years.
var ErrEmptySeries = errors.New("annual series is empty")

// Trend is an ordinary least squares fit of value against year.
type Trend struct {
	Intercept float64
	Slope     float64
	PValue    float64

	// Degenerate is set when fewer than three years were available. With two
	// years the line is exact and the p-value is 0 or 1; with one year every
	// field is NaN.
	Degenerate bool
}

// Statistics are the summary statistics of one annual series.
type Statistics struct {
	Mean       float64
	SampleSize int
	StdDev     float64
	StdErr     float64
	CI95       float64
	Trend      Trend
}

// ComputeStatistics derives the table statistics from an annual series.
// NaN years are left out of the mean and standard deviation but still count
// toward the sample size.
//
// The standard deviation divides by n. The standard error is StdDev / n, not
// the textbook StdDev / sqrt(n), as in earlier versions of this table. For
// n > 1 it understates the standard error and the 95% CI derived from it.
func ComputeStatistics(s AnnualSeries) (Statistics, error) {
	n := s.Len()
	if n == 0 {
		return Statistics{}, ErrEmptySeries
	}

	valid := make([]float64, 0, n)
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}

	mean, std := math.NaN(), math.NaN()
	if len(valid) > 0 {
		mean, std = stat.PopMeanStdDev(valid, nil)
	}
	sem := std / float64(n)

	return Statistics{
		Mean:       mean,
		SampleSize: n,
		StdDev:     std,
		StdErr:     sem,
		CI95:       sem * ci95Factor,
		Trend:      LinearTrend(s.Years, s.Values),
	}, nil
}

// LinearTrend fits value = Intercept + Slope*year and tests Slope == 0 with a
// two-sided t-test on n-2 degrees of freedom. The t-statistic is derived from
// the correlation coefficient, so a series with no variance has r = 0 and a
// p-value of 1.
func LinearTrend(years []int, values []float64) Trend {
	n := len(years)
	if n != len(values) || n < 2 {
		return Trend{Intercept: math.NaN(), Slope: math.NaN(), PValue: math.NaN(), Degenerate: true}
	}

	x := make([]float64, n)
	for i, y := range years {
		x[i] = float64(y)
	}
	for _, v := range values {
		if math.IsNaN(v) {
			return Trend{Intercept: math.NaN(), Slope: math.NaN(), PValue: math.NaN(), Degenerate: n < 3}
		}
	}

	_, varX := stat.PopMeanVariance(x, nil)
	if varX == 0 {
		return Trend{Intercept: math.NaN(), Slope: math.NaN(), PValue: math.NaN(), Degenerate: true}
	}
	intercept, slope := stat.LinearRegression(x, values, nil, false)

	if n == 2 {
		p := 0.0
		if values[0] == values[1] {
			p = 1.0
		}
		return Trend{Intercept: intercept, Slope: slope, PValue: p, Degenerate: true}
	}

	r := 0.0
	if !constant(values) {
		r = stat.Correlation(x, values, nil)
	}
	r = math.Max(-1, math.Min(1, r))

	df := float64(n - 2)
	t := r * math.Sqrt(df/((1-r+tiny)*(1+r+tiny)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}

	return Trend{
		Intercept: intercept,
		Slope:     slope,
		PValue:    2 * dist.CDF(-math.Abs(t)),
	}
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
