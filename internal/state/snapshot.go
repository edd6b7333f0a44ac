package state

import "NiftyDash/internal/domain/models"

// Snapshot is a deep copy of the application state at one point in time.
type Snapshot struct {
	Seq          uint64                   `json:"seq"`
	Health       models.ServiceHealth     `json:"health"`
	Historical   []models.HistoricalPoint `json:"historical"`
	MarketLinks  []models.MarketLink      `json:"market_links"`
	ModelInfo    *models.ModelInfo        `json:"model_info,omitempty"`
	Predictions  []models.PredictionPoint `json:"predictions"`
	Action       models.OperationSlot     `json:"action"`
	Refresh      models.OperationSlot     `json:"refresh"`
	View         models.ViewState         `json:"view"`
	Notification models.Notification      `json:"notification"`
	Generations  map[models.Slice]uint64  `json:"generations"`
}

// ChangeEvent tells subscribers that a slice changed. Subscribers re-read a
// Snapshot; the event carries no payload.
type ChangeEvent struct {
	Seq   uint64               `json:"seq"`
	Slice models.Slice         `json:"slice"`
	Kind  models.OperationKind `json:"kind,omitempty"`
}

func copyModelInfo(in *models.ModelInfo) *models.ModelInfo {
	if in == nil {
		return nil
	}
	out := *in
	if in.Performance != nil {
		p := *in.Performance
		out.Performance = &p
	}
	out.ModelSummary = append([]string(nil), in.ModelSummary...)
	return &out
}

func copyView(v models.ViewState) models.ViewState {
	v.SelectedIndicators = append(models.IndicatorSet(nil), v.SelectedIndicators...)
	return v
}

// HistoricalPoint indicator fields are pointers; copy them so callers cannot
// write through to the store.
func copyHistorical(in []models.HistoricalPoint) []models.HistoricalPoint {
	out := make([]models.HistoricalPoint, len(in))
	for i, p := range in {
		out[i] = p
		out[i].SMA20 = clonePtr(p.SMA20)
		out[i].SMA50 = clonePtr(p.SMA50)
		out[i].EMA12 = clonePtr(p.EMA12)
		out[i].MA10 = clonePtr(p.MA10)
		out[i].MA50 = clonePtr(p.MA50)
		out[i].MA100 = clonePtr(p.MA100)
		out[i].RSI = clonePtr(p.RSI)
		out[i].MACD = clonePtr(p.MACD)
		out[i].MACDSignal = clonePtr(p.MACDSignal)
		out[i].MACDHistogram = clonePtr(p.MACDHistogram)
		out[i].BBUpper = clonePtr(p.BBUpper)
		out[i].BBMiddle = clonePtr(p.BBMiddle)
		out[i].BBLower = clonePtr(p.BBLower)
	}
	return out
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
