package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"NiftyDash/internal/domain/models"
	"NiftyDash/internal/domain/repository"
)

// execer is the subset of *sql.DB the archive needs.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ClickHouseForecastArchive implements ForecastSink as an append-only table.
type ClickHouseForecastArchive struct {
	db    execer
	table string
}

// NewClickHouseForecastArchive creates the ClickHouse sink.
func NewClickHouseForecastArchive(db execer, table string) *ClickHouseForecastArchive {
	return &ClickHouseForecastArchive{db: db, table: table}
}

var _ repository.ForecastSink = (*ClickHouseForecastArchive)(nil)

func (s *ClickHouseForecastArchive) Name() string { return "clickhouse" }

// Publish writes one row per predicted day in a single multi-row INSERT.
func (s *ClickHouseForecastArchive) Publish(ctx context.Context, rec *models.ForecastRecord) error {
	if rec == nil || len(rec.Predictions) == 0 {
		return nil
	}

	values := make([]string, 0, len(rec.Predictions))
	args := make([]interface{}, 0, len(rec.Predictions)*9)
	for _, p := range rec.Predictions {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			rec.ID,
			rec.Generation,
			uint8(rec.RequestedDays),
			rec.BasePrice,
			rec.IssuedAt,
			rec.ResolvedAt,
			uint8(p.Day),
			p.Date,
			p.PredictedPrice,
		)
	}

	q := fmt.Sprintf("INSERT INTO %s (forecast_id, generation, requested_days, base_price, issued_at, resolved_at, day, target_date, predicted_price) VALUES %s",
		s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert forecast %s: %w", rec.ID, err)
	}
	return nil
}

func (s *ClickHouseForecastArchive) Close() error {
	return nil // pool is owned by pkg/clickhouse.Client
}

// messagePublisher is the subset of *pkgkafka.Producer the sink needs.
type messagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaForecastPublisher implements ForecastSink on a Kafka topic. The
// forecast id is the message key.
type KafkaForecastPublisher struct {
	producer messagePublisher
	topic    string
}

// NewKafkaForecastPublisher creates the Kafka sink.
func NewKafkaForecastPublisher(producer messagePublisher, topic string) *KafkaForecastPublisher {
	return &KafkaForecastPublisher{producer: producer, topic: topic}
}

var _ repository.ForecastSink = (*KafkaForecastPublisher)(nil)

func (p *KafkaForecastPublisher) Name() string { return "kafka" }

func (p *KafkaForecastPublisher) Publish(ctx context.Context, rec *models.ForecastRecord) error {
	if rec == nil {
		return nil
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(rec.ID), rec); err != nil {
		return fmt.Errorf("publish forecast %s: %w", rec.ID, err)
	}
	return nil
}

func (p *KafkaForecastPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
