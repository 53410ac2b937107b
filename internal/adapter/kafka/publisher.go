package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/megandevlan/ADF/internal/config"
	"github.com/megandevlan/ADF/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces statistics rows to a Kafka topic.
// It implements pipeline.RowPublisher.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured row topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and publishes rows in a single WriteMessages call.
func (p *Publisher) Publish(ctx context.Context, emittedAt time.Time, rows ...domain.StatisticsRow) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(rows[i], emittedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish rows: %w", err)
	}
	p.logger.Debug("rows published", "count", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// RowMessage is the JSON payload of a published row. Statistics that are
// NaN are encoded as null.
type RowMessage struct {
	Case            string   `json:"case"`
	Variable        string   `json:"variable"`
	Unit            string   `json:"unit"`
	Mean            *float64 `json:"mean"`
	SampleSize      int      `json:"sample_size"`
	StdDev          *float64 `json:"standard_deviation"`
	StdErr          *float64 `json:"standard_error"`
	CI95            *float64 `json:"ci95"`
	Intercept       *float64 `json:"trend_intercept"`
	Slope           *float64 `json:"trend_slope"`
	PValue          *float64 `json:"trend_p_value"`
	Trend           string   `json:"trend"`
	TrendDegenerate bool     `json:"trend_degenerate"`
	Domain          string   `json:"domain"`
	Weighting       string   `json:"weighting"`
	EmittedAt       string   `json:"emitted_at"`
}

func newRowMessage(r domain.StatisticsRow, emittedAt time.Time) RowMessage {
	return RowMessage{
		Case:            r.Case,
		Variable:        r.Variable,
		Unit:            r.Unit,
		Mean:            finite(r.Mean),
		SampleSize:      r.SampleSize,
		StdDev:          finite(r.StdDev),
		StdErr:          finite(r.StdErr),
		CI95:            finite(r.CI95),
		Intercept:       finite(r.Intercept),
		Slope:           finite(r.Slope),
		PValue:          finite(r.PValue),
		Trend:           r.Trend(),
		TrendDegenerate: r.TrendDegenerate,
		Domain:          r.Domain,
		Weighting:       string(r.Weighting),
		EmittedAt:       emittedAt.UTC().Format(time.RFC3339),
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// serializeToMessage marshals a row into a Kafka message keyed by case and variable.
func serializeToMessage(r domain.StatisticsRow, emittedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(newRowMessage(r, emittedAt))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize row %s/%s: %w", r.Case, r.Variable, err)
	}
	return kafkago.Message{
		Key:   []byte(r.Case + "/" + r.Variable),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "case", Value: []byte(r.Case)},
			{Key: "weighting", Value: []byte(r.Weighting)},
			{Key: "emitted_at", Value: []byte(emittedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
