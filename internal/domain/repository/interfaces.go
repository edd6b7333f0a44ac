package repository

import (
	"context"

	"NiftyDash/internal/domain/models"
)

// ForecastSink receives successful forecasts as an outbound audit stream.
// Nothing reads them back into application state.
type ForecastSink interface {
	Name() string
	Publish(ctx context.Context, rec *models.ForecastRecord) error
	Close() error
}

type Metrics interface {
	RecordGatewayCall(op, outcome string, seconds float64)
	RecordSlotTransition(slot, status string)
	RecordStaleDiscard(slice string)
	RecordStateChange(slice string)
	SetSubscribers(n int)
	RecordForecastSent(sink, outcome string)
	RecordError(kind string)
}
