package models

import "time"

// ForecastRecord is an audit entry for one successful predict call.
type ForecastRecord struct {
	ID            string            `json:"id"`
	Generation    uint64            `json:"generation"`
	RequestedDays int               `json:"requested_days"`
	BasePrice     *float64          `json:"base_price,omitempty"`
	IssuedAt      time.Time         `json:"issued_at"`
	ResolvedAt    time.Time         `json:"resolved_at"`
	Predictions   []PredictionPoint `json:"predictions"`
}
