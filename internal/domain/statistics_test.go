package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualMean(t *testing.T) {
	a := &DataArray{
		Name:   "TS",
		Dims:   []string{DimTime},
		Shape:  []int{5},
		Values: []float64{1, 3, 10, math.NaN(), 20},
		Time: []Date{
			{Year: 1, Month: 1, Day: 15},
			{Year: 1, Month: 2, Day: 15},
			{Year: 2, Month: 1, Day: 15},
			{Year: 2, Month: 2, Day: 15},
			{Year: 2, Month: 3, Day: 15},
		},
	}

	s, err := AnnualMean(a)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, s.Years)
	assert.Equal(t, []float64{2, 15}, s.Values)
}

func TestAnnualMean_AllNaNYear(t *testing.T) {
	a := &DataArray{
		Name:   "TS",
		Dims:   []string{DimTime},
		Shape:  []int{2},
		Values: []float64{math.NaN(), 4},
		Time:   []Date{{Year: 1, Month: 6, Day: 1}, {Year: 2, Month: 6, Day: 1}},
	}

	s, err := AnnualMean(a)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.True(t, math.IsNaN(s.Values[0]))
	assert.Equal(t, 4.0, s.Values[1])
}

func TestAnnualMean_Errors(t *testing.T) {
	_, err := AnnualMean(&DataArray{Name: "PHIS", Dims: []string{DimLat}, Shape: []int{1}, Values: []float64{1}})
	require.ErrorIs(t, err, ErrNoTimeAxis)

	_, err = AnnualMean(&DataArray{Name: "TS", Dims: []string{DimTime, DimLat}, Shape: []int{1, 1}, Values: []float64{1}, Time: []Date{{Year: 1, Month: 1, Day: 1}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only the time dimension")
}

func TestComputeStatistics_SEMConvention(t *testing.T) {
	series := AnnualSeries{
		Years:  []int{1, 2, 3, 4, 5, 6},
		Values: []float64{2, 4, 4, 4, 5, 5},
	}

	st, err := ComputeStatistics(series)
	require.NoError(t, err)

	assert.Equal(t, 6, st.SampleSize)
	assert.InDelta(t, 4.0, st.Mean, 1e-12)
	// Population std: sqrt(((4+0+0+0+1+1)/6)) = 1
	assert.InDelta(t, 1.0, st.StdDev, 1e-12)
	// Divides by n, not sqrt(n).
	assert.Equal(t, st.StdDev/float64(st.SampleSize), st.StdErr)
	assert.InDelta(t, st.StdErr*1.96, st.CI95, 1e-15)
}

func TestComputeStatistics_SEMHoldsForArbitrarySeries(t *testing.T) {
	for n := 1; n <= 40; n++ {
		s := AnnualSeries{}
		for i := 0; i < n; i++ {
			s.Years = append(s.Years, 1850+i)
			s.Values = append(s.Values, 288+math.Sin(float64(i)*1.7)*3)
		}
		st, err := ComputeStatistics(s)
		require.NoError(t, err)
		assert.Equal(t, st.StdDev/float64(n), st.StdErr, "n=%d", n)
		assert.InDelta(t, st.StdErr*1.96, st.CI95, 1e-12, "n=%d", n)
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	_, err := ComputeStatistics(AnnualSeries{})
	require.ErrorIs(t, err, ErrEmptySeries)
}

func TestComputeStatistics_NaNYearCountsTowardSampleSize(t *testing.T) {
	st, err := ComputeStatistics(AnnualSeries{Years: []int{1, 2, 3}, Values: []float64{1, math.NaN(), 3}})
	require.NoError(t, err)
	assert.Equal(t, 3, st.SampleSize)
	assert.InDelta(t, 2.0, st.Mean, 1e-12)
	assert.True(t, math.IsNaN(st.Trend.Slope))
}

func TestLinearTrend_PerfectLine(t *testing.T) {
	years := make([]int, 10)
	values := make([]float64, 10)
	for i := range years {
		years[i] = 2000 + i
		values[i] = 3 + 0.5*float64(years[i]-2000)
	}

	tr := LinearTrend(years, values)
	assert.False(t, tr.Degenerate)
	assert.InDelta(t, 0.5, tr.Slope, 1e-9)
	// Intercept is at year 0: 3 - 0.5*2000.
	assert.InDelta(t, -997.0, tr.Intercept, 1e-6)
	assert.Less(t, tr.PValue, 1e-10)
}

func TestLinearTrend_Constant(t *testing.T) {
	tr := LinearTrend([]int{1, 2, 3, 4, 5}, []float64{280, 280, 280, 280, 280})
	assert.InDelta(t, 0.0, tr.Slope, 1e-12)
	assert.InDelta(t, 280.0, tr.Intercept, 1e-9)
	assert.InDelta(t, 1.0, tr.PValue, 1e-12)
}

func TestLinearTrend_NoisyKnownPValue(t *testing.T) {
	// Reference values from scipy.stats.linregress.
	years := []int{1, 2, 3, 4, 5}
	values := []float64{1, 3, 2, 5, 4}

	tr := LinearTrend(years, values)
	assert.InDelta(t, 0.8, tr.Slope, 1e-12)
	assert.InDelta(t, 0.6, tr.Intercept, 1e-12)
	assert.InDelta(t, 0.1040880, tr.PValue, 1e-6)
}

func TestLinearTrend_Degenerate(t *testing.T) {
	t.Run("one year", func(t *testing.T) {
		tr := LinearTrend([]int{2000}, []float64{5})
		assert.True(t, tr.Degenerate)
		assert.True(t, math.IsNaN(tr.Slope))
		assert.True(t, math.IsNaN(tr.Intercept))
		assert.True(t, math.IsNaN(tr.PValue))
	})

	t.Run("two different years", func(t *testing.T) {
		tr := LinearTrend([]int{2000, 2001}, []float64{5, 7})
		assert.True(t, tr.Degenerate)
		assert.InDelta(t, 2.0, tr.Slope, 1e-9)
		assert.Equal(t, 0.0, tr.PValue)
	})

	t.Run("two equal values", func(t *testing.T) {
		tr := LinearTrend([]int{2000, 2001}, []float64{5, 5})
		assert.True(t, tr.Degenerate)
		assert.InDelta(t, 0.0, tr.Slope, 1e-12)
		assert.Equal(t, 1.0, tr.PValue)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		tr := LinearTrend([]int{2000, 2001, 2002}, []float64{1, 2})
		assert.True(t, tr.Degenerate)
		assert.True(t, math.IsNaN(tr.PValue))
	})
}

func TestComputeStatistics_SingleYearDoesNotPanic(t *testing.T) {
	st, err := ComputeStatistics(AnnualSeries{Years: []int{1}, Values: []float64{42}})
	require.NoError(t, err)
	assert.Equal(t, 1, st.SampleSize)
	assert.Equal(t, 42.0, st.Mean)
	assert.Equal(t, 0.0, st.StdDev)
	assert.Equal(t, 0.0, st.StdErr)
	assert.True(t, st.Trend.Degenerate)
	assert.True(t, math.IsNaN(st.Trend.PValue))
}

func TestStatisticsRow_Trend(t *testing.T) {
	r := StatisticsRow{Intercept: -997, Slope: 0.5}
	assert.Equal(t, "-997.000 +  0.500 t", r.Trend())

	r = StatisticsRow{Intercept: 280, Slope: -0.01234}
	assert.Equal(t, " 280.000 + -0.012 t", r.Trend())
}

func TestNewStatisticsRow(t *testing.T) {
	st := Statistics{Mean: 1, SampleSize: 3, StdDev: 0.3, StdErr: 0.1, CI95: 0.196, Trend: Trend{Intercept: 2, Slope: 3, PValue: 0.4}}
	row := NewStatisticsRow("case1", "TS", "K", st, WeightingCosLat)

	assert.Equal(t, StatisticsRow{
		Variable: "TS", Unit: "K", Mean: 1, SampleSize: 3, StdDev: 0.3, StdErr: 0.1, CI95: 0.196,
		Intercept: 2, Slope: 3, PValue: 0.4,
		Case: "case1", Domain: GlobalDomain, Weighting: WeightingCosLat,
	}, row)
}

func TestDomainByName(t *testing.T) {
	d, ok := DomainByName("tropics")
	require.True(t, ok)
	assert.Equal(t, -20.0, d.LatMin)
	assert.Equal(t, 20.0, d.LatMax)

	_, ok = DomainByName("arctic")
	assert.False(t, ok)
	assert.Len(t, Domains, 4)
}
