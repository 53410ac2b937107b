package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/megandevlan/ADF/internal/config"
	"github.com/megandevlan/ADF/internal/domain"
	"github.com/megandevlan/ADF/internal/observability"
)

// Locator finds time-series files for a case.
type Locator interface {
	CheckDir(caseName, dir string) error
	Find(dir, caseName, variable string) ([]string, error)
}

// Loader reads one variable from a time-series file.
type Loader interface {
	Load(path, variable string) (*domain.DataArray, error)
}

// Source is a Locator that can also load what it finds.
type Source interface {
	Locator
	Loader
}

// TableWriter receives the rows of one case's table.
type TableWriter interface {
	Reset() error
	Append(row domain.StatisticsRow) error
}

// TableFactory returns the table writer for a case.
type TableFactory func(caseName string) TableWriter

// RowPublisher forwards emitted rows to a downstream consumer.
type RowPublisher interface {
	Publish(ctx context.Context, emittedAt time.Time, rows ...domain.StatisticsRow) error
}

// SeriesPlotter draws the annual series behind a row.
type SeriesPlotter interface {
	PlotAnnualSeries(row domain.StatisticsRow, series domain.AnnualSeries) (string, error)
}

// Option configures optional Pipeline sinks.
type Option func(*Pipeline)

// WithPublisher also publishes every emitted row.
func WithPublisher(pub RowPublisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithPlotter also plots the annual series of every emitted row.
func WithPlotter(pl SeriesPlotter) Option {
	return func(p *Pipeline) { p.plotter = pl }
}

// Pipeline computes the AMWG statistics table for every configured case and
// variable.
type Pipeline struct {
	cases     []config.Case
	variables []string
	source    Source
	tables    TableFactory
	publisher RowPublisher
	plotter   SeriesPlotter
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	ready     atomic.Bool
}

// New creates a Pipeline over the given cases and variables.
func New(cases []config.Case, variables []string, src Source, tables TableFactory, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, opts ...Option) *Pipeline {
	p := &Pipeline{
		cases:     cases,
		variables: variables,
		source:    src,
		tables:    tables,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// CheckReadiness returns nil once a run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no table run has completed yet")
	}
	return nil
}

// Run builds the table of every case in order. Skipped variables are logged
// and counted; the first fatal error stops the run and is returned.
func (p *Pipeline) Run(ctx context.Context) error {
	start := p.clock.Now()
	p.logger.Info("amwg table started", "cases", len(p.cases), "variables", len(p.variables))
	p.metrics.RunInProgress.Set(1)
	defer p.metrics.RunInProgress.Set(0)

	for _, c := range p.cases {
		if err := p.runCase(ctx, c); err != nil {
			p.metrics.FatalErrors.Inc()
			p.logger.Error("amwg table failed", "case", c.Name, "error", err)
			return err
		}
	}

	p.ready.Store(true)
	p.logger.Info("amwg table finished", "duration", p.clock.Since(start))
	return nil
}

func (p *Pipeline) runCase(ctx context.Context, c config.Case) error {
	p.logger.Info("case started", "case", c.Name, "ts_dir", c.TimeSeriesDir)
	if err := p.source.CheckDir(c.Name, c.TimeSeriesDir); err != nil {
		return err
	}

	table := p.tables(c.Name)
	if err := table.Reset(); err != nil {
		return fmt.Errorf("case %q: %w", c.Name, err)
	}

	rows := 0
	for _, v := range p.variables {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("case %q: run interrupted: %w", c.Name, err)
		}

		start := p.clock.Now()
		out, err := p.ProcessVariable(ctx, c, v)
		if err != nil {
			return err
		}
		p.metrics.VariableDuration.Observe(p.clock.Since(start).Seconds())

		for _, w := range out.Warnings {
			p.logger.Warn(w, "case", c.Name, "variable", v)
		}

		if out.Kind == domain.OutcomeSkipped {
			p.metrics.VariablesSkipped.WithLabelValues(string(out.Reason)).Inc()
			p.logger.Warn("variable skipped", "case", c.Name, "variable", v, "reason", out.Reason, "detail", out.Detail)
			continue
		}

		if err := table.Append(*out.Row); err != nil {
			return fmt.Errorf("case %q, variable %q: %w", c.Name, v, err)
		}
		rows++
		p.metrics.RowsEmitted.WithLabelValues(c.Name).Inc()
		p.metrics.AnnualSampleSize.Observe(float64(out.Row.SampleSize))
		if out.Row.Weighting.Approximate() {
			p.metrics.ApproximateReductions.WithLabelValues(string(out.Row.Weighting)).Inc()
		}
		p.logger.Info("variable tabulated", "case", c.Name, "variable", v,
			"mean", out.Row.Mean, "years", out.Row.SampleSize, "weighting", out.Row.Weighting)

		p.emit(ctx, out)
	}

	p.logger.Info("case finished", "case", c.Name, "rows", rows)
	return nil
}

// emit forwards a row to the optional sinks. Sink failures are logged and do
// not fail the run.
func (p *Pipeline) emit(ctx context.Context, out domain.Outcome) {
	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, p.clock.Now(), *out.Row); err != nil {
			p.logger.Error("publish row failed", "case", out.Case, "variable", out.Variable, "error", err)
		}
	}
	if p.plotter != nil {
		path, err := p.plotter.PlotAnnualSeries(*out.Row, out.Series)
		if err != nil {
			p.logger.Error("plot annual series failed", "case", out.Case, "variable", out.Variable, "error", err)
		} else if path != "" {
			p.logger.Debug("annual series plotted", "case", out.Case, "variable", out.Variable, "path", path)
		}
	}
}

// ProcessVariable loads one variable of a case and reduces it to a table row.
// Conditions the table can live without are returned as a skipped Outcome;
// everything else is an error.
func (p *Pipeline) ProcessVariable(_ context.Context, c config.Case, variable string) (domain.Outcome, error) {
	files, err := p.source.Find(c.TimeSeriesDir, c.Name, variable)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("case %q, variable %q: %w", c.Name, variable, err)
	}
	switch {
	case len(files) == 0:
		return domain.Skipped(c.Name, variable, domain.SkipNoFiles,
			fmt.Sprintf("no time series file for %q in %s", variable, c.TimeSeriesDir)), nil
	case len(files) > 1:
		return domain.Outcome{}, &domain.AmbiguousInputError{Case: c.Name, Variable: variable, Matches: files}
	}

	a, err := p.source.Load(files[0], variable)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("case %q: %w", c.Name, err)
	}

	if domain.HasVerticalDim(a) {
		return domain.Skipped(c.Name, variable, domain.SkipVerticalDim,
			fmt.Sprintf("%q has a vertical dimension %v, only 2-D variables are tabulated", variable, a.Dims)), nil
	}
	if !a.HasDim(domain.DimTime) {
		return domain.Skipped(c.Name, variable, domain.SkipNoTimeAxis,
			fmt.Sprintf("%q has no time dimension %v", variable, a.Dims)), nil
	}

	var warnings []string
	weighting := domain.WeightingNone
	ts := a
	if len(a.Dims) > 1 {
		ts, weighting, err = domain.SpatialMean(a)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("case %q: %w", c.Name, err)
		}
		if weighting.Approximate() {
			warnings = append(warnings, "spatial mean uses uniform column weights, result is approximate")
		}
	}

	series, err := domain.AnnualMean(ts)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("case %q: %w", c.Name, err)
	}
	st, err := domain.ComputeStatistics(series)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("case %q, variable %q: %w", c.Name, variable, err)
	}
	if st.Trend.Degenerate {
		warnings = append(warnings, fmt.Sprintf("trend is degenerate with %d annual values", st.SampleSize))
	}

	row := domain.NewStatisticsRow(c.Name, variable, a.UnitString(), st, weighting)
	return domain.Outcome{
		Kind:     domain.OutcomeRow,
		Case:     c.Name,
		Variable: variable,
		Row:      &row,
		Series:   series,
		Warnings: warnings,
	}, nil
}
