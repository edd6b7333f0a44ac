package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type PredictRequest struct {
	Days *int `json:"days" validate:"omitempty,gte=1,lte=30"`
}

type ViewUpdateRequest struct {
	ActiveTab          *string   `json:"active_tab" validate:"omitempty,oneof=price_charts technical_indicators predictions model_info market_links"`
	PredictionDays     *int      `json:"prediction_days" validate:"omitempty,gte=1,lte=30"`
	ShowIndicators     *bool     `json:"show_indicators"`
	SelectedIndicators *[]string `json:"selected_indicators" validate:"omitempty,dive,oneof=SMA_20 SMA_50 EMA_12 MA_10 MA_50 MA_100 RSI MACD MACD_Signal MACD_Histogram BB_Upper BB_Middle BB_Lower"`
}

type ActionResponse struct {
	Action  OperationKind `json:"action"`
	Started bool          `json:"started"`
}
