package service

import (
	"context"

	"NiftyDash/internal/domain/models"
)

// PredictionGateway is a typed wrapper around the remote prediction service.
// Calls block the calling goroutine only; none of them mutate application state.
type PredictionGateway interface {
	CheckHealth(ctx context.Context) models.ServiceHealth
	FetchHistorical(ctx context.Context) Result[[]models.HistoricalPoint]
	FetchMarketLinks(ctx context.Context) Result[[]models.MarketLink]
	FetchModelInfo(ctx context.Context) Result[models.ModelInfo]
	Train(ctx context.Context) Result[string]
	// Predict fails with KindInvalidArgument when days is outside 1..30.
	Predict(ctx context.Context, days int) Result[[]models.PredictionPoint]
}
