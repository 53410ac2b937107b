package domain

import "fmt"

// Columns is the fixed header of the AMWG table.
var Columns = []string{
	"variable", "unit", "mean", "sample size", "standard dev.",
	"standard error", "95% CI", "trend", "trend p-value",
}

// StatisticsRow is one line of the AMWG table, plus metadata that is not
// written to the CSV.
type StatisticsRow struct {
	Variable   string
	Unit       string
	Mean       float64
	SampleSize int
	StdDev     float64
	StdErr     float64
	CI95       float64
	Intercept  float64
	Slope      float64
	PValue     float64

	Case            string
	Domain          string
	Weighting       Weighting
	TrendDegenerate bool
}

// NewStatisticsRow assembles a row from computed statistics.
func NewStatisticsRow(caseName, variable, unit string, st Statistics, w Weighting) StatisticsRow {
	return StatisticsRow{
		Variable:        variable,
		Unit:            unit,
		Mean:            st.Mean,
		SampleSize:      st.SampleSize,
		StdDev:          st.StdDev,
		StdErr:          st.StdErr,
		CI95:            st.CI95,
		Intercept:       st.Trend.Intercept,
		Slope:           st.Trend.Slope,
		PValue:          st.Trend.PValue,
		Case:            caseName,
		Domain:          GlobalDomain,
		Weighting:       w,
		TrendDegenerate: st.Trend.Degenerate,
	}
}

// Trend renders the fitted line as "intercept + slope t", three decimals,
// with a blank in the sign position of non-negative numbers.
func (r StatisticsRow) Trend() string {
	return fmt.Sprintf("% .3f + % .3f t", r.Intercept, r.Slope)
}

// OutcomeKind discriminates the result of processing one variable.
type OutcomeKind int

const (
	// OutcomeRow means a row was produced.
	OutcomeRow OutcomeKind = iota
	// OutcomeSkipped means the variable was skipped without failing the run.
	OutcomeSkipped
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRow:
		return "row"
	case OutcomeSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// SkipReason explains a soft-skip.
type SkipReason string

const (
	SkipNoFiles     SkipReason = "no_files"
	SkipVerticalDim SkipReason = "vertical_dimension"
	SkipNoTimeAxis  SkipReason = "no_time_axis"
)

// Outcome is the result of processing one (case, variable) pair. Fatal
// conditions are reported as errors, never as an Outcome.
type Outcome struct {
	Kind     OutcomeKind
	Case     string
	Variable string

	// Row and Series are set when Kind is OutcomeRow.
	Row    *StatisticsRow
	Series AnnualSeries

	// Reason and Detail are set when Kind is OutcomeSkipped.
	Reason SkipReason
	Detail string

	// Warnings collects non-fatal diagnostics, e.g. approximate weighting.
	Warnings []string
}

// Skipped builds a skip outcome.
func Skipped(caseName, variable string, reason SkipReason, detail string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Case: caseName, Variable: variable, Reason: reason, Detail: detail}
}
