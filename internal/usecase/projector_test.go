package usecase

import (
	"testing"

	"NiftyDash/internal/domain/models"
	"NiftyDash/internal/state"
)

func f64(v float64) *float64 { return &v }

func TestProjectEmptySnapshot(t *testing.T) {
	d := Project(state.NewStore().Snapshot())

	if d.Summary.CurrentPrice != NotAvailable || d.Summary.LatestPredictedPrice != NotAvailable || d.Summary.Accuracy != NotAvailable {
		t.Fatalf("expected N/A cards, got %+v", d.Summary)
	}
	if d.Summary.DataPointCount != 0 || d.Summary.HorizonLabel != "7-Day Prediction" {
		t.Fatalf("unexpected summary: %+v", d.Summary)
	}
	if d.Health != "UNKNOWN" || d.Busy {
		t.Fatalf("unexpected status: %s busy=%v", d.Health, d.Busy)
	}
	if d.Model.Available || d.Model.Loaded != "No" || d.Model.Summary != "No model summary available" {
		t.Fatalf("unexpected model panel: %+v", d.Model)
	}
	if len(d.Chart.Dates) != 0 || len(d.Chart.Indicators) != 3 {
		t.Fatalf("unexpected chart: %+v", d.Chart)
	}
}

func TestProjectCurrentPriceIsLastPoint(t *testing.T) {
	snap := state.Snapshot{
		Historical: []models.HistoricalPoint{{Date: "2024-01-01", Price: 21000}, {Date: "2024-01-02", Price: 21150}},
		View:       models.DefaultViewState(),
	}
	if got := Project(snap).Summary.CurrentPrice; got != "₹21,150.00" {
		t.Fatalf("CurrentPrice = %q", got)
	}
}

func TestProjectNeutralChangeWithoutPrice(t *testing.T) {
	snap := state.Snapshot{
		Predictions: []models.PredictionPoint{{Day: 1, Date: "2024-01-03", PredictedPrice: 21200}},
		View:        models.DefaultViewState(),
	}
	row := Project(snap).Predictions[0]
	if row.Change != 0 || row.ChangePercent != 0 || row.ChangeText != "+₹0.00 (+0.00%)" {
		t.Fatalf("row = %+v", row)
	}
	if !row.Neutral || row.Up {
		t.Fatalf("row without a current price must be neutral, got %+v", row)
	}

	snap.Historical = []models.HistoricalPoint{{Date: "2024-01-02", Price: 0}}
	if row := Project(snap).Predictions[0]; !row.Neutral || row.Up {
		t.Fatalf("zero current price must be neutral, got %+v", row)
	}
}

func TestProjectUnchangedPriceIsUp(t *testing.T) {
	snap := state.Snapshot{
		Historical:  []models.HistoricalPoint{{Date: "2024-01-02", Price: 21150}},
		Predictions: []models.PredictionPoint{{Day: 1, Date: "2024-01-03", PredictedPrice: 21150}},
		View:        models.DefaultViewState(),
	}
	row := Project(snap).Predictions[0]
	if row.Neutral || !row.Up || row.Change != 0 {
		t.Fatalf("row = %+v", row)
	}
}

func TestProjectNegativeChange(t *testing.T) {
	snap := state.Snapshot{
		Historical:  []models.HistoricalPoint{{Date: "2024-01-02", Price: 20000}},
		Predictions: []models.PredictionPoint{{Day: 1, Date: "2024-01-03", PredictedPrice: 19900}},
		View:        models.DefaultViewState(),
	}
	row := Project(snap).Predictions[0]
	if row.Change != -100 || row.ChangePercent != -0.5 || row.Up {
		t.Fatalf("row = %+v", row)
	}
	if row.ChangeText != "-₹100.00 (-0.50%)" {
		t.Fatalf("ChangeText = %q", row.ChangeText)
	}
}

func TestProjectModelPanel(t *testing.T) {
	snap := state.Snapshot{
		ModelInfo: &models.ModelInfo{
			ModelLoaded:    true,
			SequenceLength: 60,
			Performance:    &models.Performance{MSE: 12345.678912, MAE: 88.1, R2: 0.98765, RMSE: 111.11111},
			ModelSummary:   []string{"LSTM(50)", "Dense(1)"},
		},
		View: models.DefaultViewState(),
	}
	d := Project(snap)
	m := d.Model
	if !m.Available || m.Loaded != "Yes" || m.SequenceLength != "60" {
		t.Fatalf("panel = %+v", m)
	}
	if m.MSE != "12345.6789" || m.MAE != "88.1000" || m.R2 != "0.9877" || m.RMSE != "111.1111" {
		t.Fatalf("metrics = %+v", m)
	}
	if m.Summary != "LSTM(50)\nDense(1)" {
		t.Fatalf("Summary = %q", m.Summary)
	}
	if d.Summary.Accuracy != "98.8%" {
		t.Fatalf("Accuracy = %q", d.Summary.Accuracy)
	}

	snap.ModelInfo.Performance = nil
	if got := Project(snap); got.Summary.Accuracy != NotAvailable || got.Model.R2 != NotAvailable {
		t.Fatalf("expected N/A without performance: %+v", got.Model)
	}
}

func TestProjectChartIndicators(t *testing.T) {
	view := models.DefaultViewState()
	view.SelectedIndicators = models.IndicatorSet{models.IndicatorSMA20, models.IndicatorRSI}
	snap := state.Snapshot{
		Historical: []models.HistoricalPoint{
			{Date: "2024-01-01", Price: 21000},
			{Date: "2024-01-02", Price: 21150, SMA20: f64(21050), RSI: f64(61.2)},
		},
		Predictions: []models.PredictionPoint{{Day: 1, Date: "2024-01-03", PredictedPrice: 21200}},
		View:        view,
	}

	c := Project(snap).Chart
	if len(c.Dates) != 2 || c.Price[1] != 21150 || c.Forecast[0] != 21200 {
		t.Fatalf("chart = %+v", c)
	}
	if len(c.Indicators) != 2 || c.Indicators[0].Name != "SMA_20" || c.Indicators[1].Name != "RSI" {
		t.Fatalf("indicators = %+v", c.Indicators)
	}
	if c.Indicators[0].Values[0] != nil || *c.Indicators[0].Values[1] != 21050 {
		t.Fatalf("SMA_20 values = %v", c.Indicators[0].Values)
	}

	snap.View.ShowIndicators = false
	if got := Project(snap).Chart; len(got.Indicators) != 0 {
		t.Fatalf("indicators hidden but projected: %+v", got.Indicators)
	}
}

func TestProjectBusyAndLabels(t *testing.T) {
	view := models.DefaultViewState()
	view.PredictionDays = 14
	snap := state.Snapshot{
		Health: models.HealthUnhealthy,
		Action: models.OperationSlot{Status: models.StatusLoading, Kind: models.OpTrain},
		View:   view,
	}
	d := Project(snap)
	if !d.Busy || d.Refreshing || d.Health != "UNHEALTHY" || d.Summary.HorizonLabel != "14-Day Prediction" {
		t.Fatalf("dashboard = %+v", d)
	}
}
