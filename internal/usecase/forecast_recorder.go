package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"NiftyDash/internal/domain/models"
	drepo "NiftyDash/internal/domain/repository"
	"NiftyDash/pkg/logger"
)

// ForecastRecorder routes successful forecasts to the configured sink.
// A nil sink drops records.
type ForecastRecorder struct {
	sink    drepo.ForecastSink
	metrics drepo.Metrics
	log     *logger.Logger
	timeout time.Duration
}

// NewForecastRecorder creates a new ForecastRecorder instance.
func NewForecastRecorder(sink drepo.ForecastSink, metrics drepo.Metrics, log *logger.Logger) *ForecastRecorder {
	if log == nil {
		log = logger.Nop()
	}
	return &ForecastRecorder{sink: sink, metrics: metrics, log: log, timeout: 10 * time.Second}
}

// NewRecord builds an audit record for a forecast resolved now.
func NewRecord(gen uint64, days int, basePrice *float64, issuedAt time.Time, points []models.PredictionPoint) *models.ForecastRecord {
	return &models.ForecastRecord{
		ID:            uuid.NewString(),
		Generation:    gen,
		RequestedDays: days,
		BasePrice:     basePrice,
		IssuedAt:      issuedAt,
		ResolvedAt:    time.Now(),
		Predictions:   append([]models.PredictionPoint(nil), points...),
	}
}

// Record publishes rec and returns the sink error, if any.
func (r *ForecastRecorder) Record(ctx context.Context, rec *models.ForecastRecord) error {
	if rec == nil {
		return fmt.Errorf("forecast is nil")
	}
	if r.sink == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.sink.Publish(ctx, rec); err != nil {
		if r.metrics != nil {
			r.metrics.RecordForecastSent(r.sink.Name(), "error")
			r.metrics.RecordError("forecast_sink")
		}
		return fmt.Errorf("record forecast: %w", err)
	}
	if r.metrics != nil {
		r.metrics.RecordForecastSent(r.sink.Name(), "ok")
	}
	r.log.Debug("forecast recorded",
		logger.String("sink", r.sink.Name()),
		logger.String("forecast_id", rec.ID),
		logger.Int("days", rec.RequestedDays),
	)
	return nil
}

// Close closes the underlying sink if available.
func (r *ForecastRecorder) Close() {
	if r.sink != nil {
		_ = r.sink.Close()
	}
}
