package models

// HistoricalPoint is one trading day of the NIFTY 50 series with the
// indicators the prediction service computed for it. Indicators the service
// omitted (warm-up windows) are nil.
type HistoricalPoint struct {
	Date          string   `json:"date"`
	Price         float64  `json:"price"`
	SMA20         *float64 `json:"SMA_20,omitempty"`
	SMA50         *float64 `json:"SMA_50,omitempty"`
	EMA12         *float64 `json:"EMA_12,omitempty"`
	MA10          *float64 `json:"MA_10_days,omitempty"`
	MA50          *float64 `json:"MA_50_days,omitempty"`
	MA100         *float64 `json:"MA_100_days,omitempty"`
	RSI           *float64 `json:"RSI,omitempty"`
	MACD          *float64 `json:"MACD,omitempty"`
	MACDSignal    *float64 `json:"MACD_Signal,omitempty"`
	MACDHistogram *float64 `json:"MACD_Histogram,omitempty"`
	BBUpper       *float64 `json:"BB_Upper,omitempty"`
	BBMiddle      *float64 `json:"BB_Middle,omitempty"`
	BBLower       *float64 `json:"BB_Lower,omitempty"`
}

// Indicator returns the value of code for this point, if present.
func (p HistoricalPoint) Indicator(code IndicatorCode) (float64, bool) {
	var v *float64
	switch code {
	case IndicatorSMA20:
		v = p.SMA20
	case IndicatorSMA50:
		v = p.SMA50
	case IndicatorEMA12:
		v = p.EMA12
	case IndicatorMA10:
		v = p.MA10
	case IndicatorMA50:
		v = p.MA50
	case IndicatorMA100:
		v = p.MA100
	case IndicatorRSI:
		v = p.RSI
	case IndicatorMACD:
		v = p.MACD
	case IndicatorMACDSignal:
		v = p.MACDSignal
	case IndicatorMACDHistogram:
		v = p.MACDHistogram
	case IndicatorBBUpper:
		v = p.BBUpper
	case IndicatorBBMiddle:
		v = p.BBMiddle
	case IndicatorBBLower:
		v = p.BBLower
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// PredictionPoint is one forecast day. Day is 1-based.
type PredictionPoint struct {
	Day            int     `json:"day"`
	Date           string  `json:"date"`
	PredictedPrice float64 `json:"predicted_price"`
}

type Performance struct {
	MSE  float64 `json:"mse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
	RMSE float64 `json:"rmse"`
}

type ModelInfo struct {
	ModelLoaded    bool         `json:"model_loaded"`
	SequenceLength int          `json:"sequence_length"`
	Performance    *Performance `json:"performance,omitempty"`
	ModelSummary   []string     `json:"model_summary"`
}

type MarketLink struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type ServiceHealth string

const (
	HealthUnknown   ServiceHealth = "unknown"
	HealthHealthy   ServiceHealth = "healthy"
	HealthUnhealthy ServiceHealth = "unhealthy"
)
