package prediction

import "NiftyDash/internal/domain/models"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// errorEnvelope is the body the service sends with non-2xx statuses.
type errorEnvelope struct {
	Status  string `json:"status" validate:"required,eq=error"`
	Message string `json:"message" validate:"required"`
}

type historicalEnvelope struct {
	Status  string            `json:"status" validate:"required,oneof=success error"`
	Message string            `json:"message"`
	Data    []historicalPoint `json:"data" validate:"required,dive"`
}

// historicalPoint overrides Date and Price of the embedded model so that a
// missing price is detected instead of decoding as zero.
type historicalPoint struct {
	models.HistoricalPoint
	Date  string   `json:"date" validate:"required,datetime=2006-01-02"`
	Price *float64 `json:"price" validate:"required"`
}

type linksEnvelope struct {
	Status  string       `json:"status" validate:"required,oneof=success error"`
	Message string       `json:"message"`
	Links   []marketLink `json:"links" validate:"required,dive"`
}

type marketLink struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	URL         string `json:"url" validate:"required,url"`
}

type modelInfoEnvelope struct {
	Status         string       `json:"status" validate:"required,oneof=success error"`
	Message        string       `json:"message"`
	ModelLoaded    *bool        `json:"model_loaded" validate:"required"`
	SequenceLength int          `json:"sequence_length" validate:"gte=0"`
	Performance    *performance `json:"performance"`
	ModelSummary   []string     `json:"model_summary"`
}

type performance struct {
	MSE  *float64 `json:"mse" validate:"required"`
	MAE  *float64 `json:"mae" validate:"required"`
	R2   *float64 `json:"r2" validate:"required"`
	RMSE *float64 `json:"rmse" validate:"required"`
}

type trainEnvelope struct {
	Status  string `json:"status" validate:"required,oneof=success error"`
	Message string `json:"message"`
}

type predictRequest struct {
	Days int `json:"days"`
}

type predictEnvelope struct {
	Status      string            `json:"status" validate:"required,oneof=success error"`
	Message     string            `json:"message"`
	Predictions []predictionPoint `json:"predictions" validate:"required,dive"`
}

type predictionPoint struct {
	Day            int      `json:"day" validate:"gte=1"`
	Date           string   `json:"date" validate:"required,datetime=2006-01-02"`
	PredictedPrice *float64 `json:"predicted_price" validate:"required"`
}
