package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTime(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		units    string
		calendar string
		want     []Date
	}{
		{
			name:     "noleap month ends",
			values:   []float64{0, 31, 59, 365, 730},
			units:    "days since 0001-01-01 00:00:00",
			calendar: "noleap",
			want: []Date{
				{Year: 1, Month: 1, Day: 1},
				{Year: 1, Month: 2, Day: 1},
				{Year: 1, Month: 3, Day: 1},
				{Year: 2, Month: 1, Day: 1},
				{Year: 3, Month: 1, Day: 1},
			},
		},
		{
			name:     "365_day alias",
			values:   []float64{364.5},
			units:    "days since 1850-01-01",
			calendar: "365_day",
			want:     []Date{{Year: 1850, Month: 12, Day: 31}},
		},
		{
			name:     "proleptic gregorian leap year",
			values:   []float64{59, 60, 366},
			units:    "days since 2000-01-01",
			calendar: "proleptic_gregorian",
			want: []Date{
				{Year: 2000, Month: 2, Day: 29},
				{Year: 2000, Month: 3, Day: 1},
				{Year: 2001, Month: 1, Day: 1},
			},
		},
		{
			name:     "standard calendar hours",
			values:   []float64{0, 24 * 31},
			units:    "hours since 1979-01-01 00:00:00",
			calendar: "standard",
			want:     []Date{{Year: 1979, Month: 1, Day: 1}, {Year: 1979, Month: 2, Day: 1}},
		},
		{
			name:     "empty calendar means standard",
			values:   []float64{86400},
			units:    "seconds since 1970-01-01",
			calendar: "",
			want:     []Date{{Year: 1970, Month: 1, Day: 2}},
		},
		{
			name:     "standard crosses the reform gap",
			values:   []float64{0, 1},
			units:    "days since 1582-10-04",
			calendar: "gregorian",
			want:     []Date{{Year: 1582, Month: 10, Day: 4}, {Year: 1582, Month: 10, Day: 15}},
		},
		{
			name:     "julian leap century",
			values:   []float64{59},
			units:    "days since 1900-01-01",
			calendar: "julian",
			want:     []Date{{Year: 1900, Month: 2, Day: 29}},
		},
		{
			name:     "360 day",
			values:   []float64{30, 359, 360},
			units:    "days since 0001-01-01",
			calendar: "360_day",
			want: []Date{
				{Year: 1, Month: 2, Day: 1},
				{Year: 1, Month: 12, Day: 30},
				{Year: 2, Month: 1, Day: 1},
			},
		},
		{
			name:     "all leap",
			values:   []float64{59},
			units:    "days since 0001-01-01",
			calendar: "all_leap",
			want:     []Date{{Year: 1, Month: 2, Day: 29}},
		},
		{
			name:     "reference time of day shifts the date",
			values:   []float64{0.5},
			units:    "days since 2000-01-01 12:00:00",
			calendar: "noleap",
			want:     []Date{{Year: 2000, Month: 1, Day: 2}},
		},
		{
			name:     "float noise below a day boundary",
			values:   []float64{30.9999999999},
			units:    "days since 0001-01-01",
			calendar: "noleap",
			want:     []Date{{Year: 1, Month: 2, Day: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTime(tt.values, tt.units, tt.calendar)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeTime_Errors(t *testing.T) {
	tests := []struct {
		name     string
		units    string
		calendar string
		want     string
	}{
		{"missing units", "", "noleap", "unsupported units"},
		{"no reference date", "days", "noleap", "unsupported units"},
		{"unknown unit", "fortnights since 2000-01-01", "noleap", "unsupported unit"},
		{"unknown calendar", "days since 2000-01-01", "martian", "unsupported calendar"},
		{"invalid reference", "days since 2001-02-29", "noleap", "invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTime([]float64{0}, tt.units, tt.calendar)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGregorianJDNRoundTrip(t *testing.T) {
	// 2000-01-01 is JDN 2451545.
	assert.Equal(t, 2451545, gregorianJDN(Date{Year: 2000, Month: 1, Day: 1}))
	for j := 2400000; j < 2400000+800; j += 7 {
		assert.Equal(t, j, gregorianJDN(gregorianFromJDN(j)))
		assert.Equal(t, j, julianJDN(julianFromJDN(j)))
	}
}
