package models

import "fmt"

// Tab identifies one of the dashboard views.
type Tab string

const (
	TabPriceCharts         Tab = "price_charts"
	TabTechnicalIndicators Tab = "technical_indicators"
	TabPredictions         Tab = "predictions"
	TabModelInfo           Tab = "model_info"
	TabMarketLinks         Tab = "market_links"
)

var tabs = []Tab{TabPriceCharts, TabTechnicalIndicators, TabPredictions, TabModelInfo, TabMarketLinks}

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	for _, t := range tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// IndicatorCode names a technical indicator column of the historical series.
type IndicatorCode string

const (
	IndicatorSMA20         IndicatorCode = "SMA_20"
	IndicatorSMA50         IndicatorCode = "SMA_50"
	IndicatorEMA12         IndicatorCode = "EMA_12"
	IndicatorMA10          IndicatorCode = "MA_10"
	IndicatorMA50          IndicatorCode = "MA_50"
	IndicatorMA100         IndicatorCode = "MA_100"
	IndicatorRSI           IndicatorCode = "RSI"
	IndicatorMACD          IndicatorCode = "MACD"
	IndicatorMACDSignal    IndicatorCode = "MACD_Signal"
	IndicatorMACDHistogram IndicatorCode = "MACD_Histogram"
	IndicatorBBUpper       IndicatorCode = "BB_Upper"
	IndicatorBBMiddle      IndicatorCode = "BB_Middle"
	IndicatorBBLower       IndicatorCode = "BB_Lower"
)

// AllIndicators lists every code in display order.
var AllIndicators = []IndicatorCode{
	IndicatorSMA20, IndicatorSMA50, IndicatorEMA12,
	IndicatorMA10, IndicatorMA50, IndicatorMA100,
	IndicatorRSI, IndicatorMACD, IndicatorMACDSignal, IndicatorMACDHistogram,
	IndicatorBBUpper, IndicatorBBMiddle, IndicatorBBLower,
}

// IndicatorSet is a duplicate-free set of codes kept in AllIndicators order.
type IndicatorSet []IndicatorCode

// NewIndicatorSet builds a set from raw names, rejecting unknown codes.
func NewIndicatorSet(names ...string) (IndicatorSet, error) {
	seen := make(map[IndicatorCode]bool, len(names))
	for _, n := range names {
		code := IndicatorCode(n)
		if !isIndicator(code) {
			return nil, fmt.Errorf("unknown indicator %q", n)
		}
		seen[code] = true
	}
	set := make(IndicatorSet, 0, len(seen))
	for _, code := range AllIndicators {
		if seen[code] {
			set = append(set, code)
		}
	}
	return set, nil
}

func (s IndicatorSet) Has(code IndicatorCode) bool {
	for _, c := range s {
		if c == code {
			return true
		}
	}
	return false
}

func isIndicator(code IndicatorCode) bool {
	for _, c := range AllIndicators {
		if c == code {
			return true
		}
	}
	return false
}

const (
	MinPredictionDays     = 1
	MaxPredictionDays     = 30
	DefaultPredictionDays = 7
)

// ViewState is session-scoped presentation state. It is never persisted.
type ViewState struct {
	ActiveTab          Tab          `json:"active_tab"`
	PredictionDays     int          `json:"prediction_days"`
	ShowIndicators     bool         `json:"show_indicators"`
	SelectedIndicators IndicatorSet `json:"selected_indicators"`
}

func DefaultViewState() ViewState {
	return ViewState{
		ActiveTab:          TabPriceCharts,
		PredictionDays:     DefaultPredictionDays,
		ShowIndicators:     true,
		SelectedIndicators: IndicatorSet{IndicatorSMA20, IndicatorEMA12, IndicatorRSI},
	}
}

// ValidPredictionDays reports whether days is an accepted forecast horizon.
func ValidPredictionDays(days int) bool {
	return days >= MinPredictionDays && days <= MaxPredictionDays
}
