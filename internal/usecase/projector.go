package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"NiftyDash/internal/domain/models"
	"NiftyDash/internal/state"
	"NiftyDash/pkg/util"
)

// Dashboard is the display-ready projection of one state snapshot.
type Dashboard struct {
	Seq          uint64               `json:"seq"`
	ActiveTab    models.Tab           `json:"active_tab"`
	Health       string               `json:"health"`
	Busy         bool                 `json:"busy"`
	Refreshing   bool                 `json:"refreshing"`
	Action       models.OperationSlot `json:"action"`
	Refresh      models.OperationSlot `json:"refresh"`
	Summary      SummaryCards         `json:"summary"`
	Predictions  []PredictionRow      `json:"predictions"`
	Model        ModelPanel           `json:"model"`
	Chart        Chart                `json:"chart"`
	Links        []models.MarketLink  `json:"links"`
	View         models.ViewState     `json:"view"`
	Notification models.Notification  `json:"notification"`
}

type SummaryCards struct {
	CurrentPrice         string `json:"current_price"`
	LatestPredictedPrice string `json:"latest_predicted_price"`
	HorizonLabel         string `json:"horizon_label"`
	Accuracy             string `json:"accuracy"`
	DataPointCount       int    `json:"data_point_count"`
}

// PredictionRow is one forecast day compared against the current price.
// Rows are Neutral, and never Up, when the current price is absent or zero.
type PredictionRow struct {
	Day            int     `json:"day"`
	Date           string  `json:"date"`
	DisplayDate    string  `json:"display_date"`
	PredictedPrice float64 `json:"predicted_price"`
	Price          string  `json:"price"`
	Change         float64 `json:"change"`
	ChangePercent  float64 `json:"change_percent"`
	ChangeText     string  `json:"change_text"`
	Neutral        bool    `json:"neutral"`
	Up             bool    `json:"up"`
}

type ModelPanel struct {
	Available      bool   `json:"available"`
	Loaded         string `json:"loaded"`
	SequenceLength string `json:"sequence_length"`
	MSE            string `json:"mse"`
	MAE            string `json:"mae"`
	R2             string `json:"r2"`
	RMSE           string `json:"rmse"`
	Summary        string `json:"summary"`
}

type ChartSeries struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// Chart holds the price history, the selected indicator overlays and the
// forecast as parallel series.
type Chart struct {
	Dates         []string      `json:"dates"`
	Price         []float64     `json:"price"`
	Indicators    []ChartSeries `json:"indicators"`
	ForecastDates []string      `json:"forecast_dates"`
	Forecast      []float64     `json:"forecast"`
}

// Project derives the dashboard from snap. It is a pure function and never
// fails on empty state.
func Project(snap state.Snapshot) Dashboard {
	var current *float64
	if n := len(snap.Historical); n > 0 {
		p := snap.Historical[n-1].Price
		current = &p
	}

	d := Dashboard{
		Seq:          snap.Seq,
		ActiveTab:    snap.View.ActiveTab,
		Health:       strings.ToUpper(string(snap.Health)),
		Busy:         snap.Action.Loading(),
		Refreshing:   snap.Refresh.Loading(),
		Action:       snap.Action,
		Refresh:      snap.Refresh,
		Predictions:  make([]PredictionRow, 0, len(snap.Predictions)),
		Links:        append([]models.MarketLink{}, snap.MarketLinks...),
		View:         snap.View,
		Notification: snap.Notification,
	}

	d.Summary = SummaryCards{
		CurrentPrice:         NotAvailable,
		LatestPredictedPrice: NotAvailable,
		HorizonLabel:         HorizonLabel(snap.View.PredictionDays),
		Accuracy:             NotAvailable,
		DataPointCount:       len(snap.Historical),
	}
	if current != nil {
		d.Summary.CurrentPrice = FormatINR(*current)
	}
	if n := len(snap.Predictions); n > 0 {
		d.Summary.LatestPredictedPrice = FormatINR(snap.Predictions[n-1].PredictedPrice)
	}
	if snap.ModelInfo != nil && snap.ModelInfo.Performance != nil {
		d.Summary.Accuracy = FormatAccuracy(snap.ModelInfo.Performance.R2)
	}

	neutral := current == nil || *current == 0
	for _, p := range snap.Predictions {
		delta, pct := changeFrom(current, p.PredictedPrice)
		d.Predictions = append(d.Predictions, PredictionRow{
			Day:            p.Day,
			Date:           p.Date,
			DisplayDate:    util.DisplayDate(p.Date),
			PredictedPrice: p.PredictedPrice,
			Price:          FormatINR(p.PredictedPrice),
			Change:         delta,
			ChangePercent:  pct,
			ChangeText:     fmt.Sprintf("%s (%s)", FormatSignedINR(delta), FormatSignedPercent(pct)),
			Neutral:        neutral,
			Up:             !neutral && delta >= 0,
		})
	}

	d.Model = projectModel(snap.ModelInfo)
	d.Chart = projectChart(snap)
	return d
}

// HorizonLabel names the forecast card, e.g. "7-Day Prediction".
func HorizonLabel(days int) string {
	return fmt.Sprintf("%d-Day Prediction", days)
}

func projectModel(info *models.ModelInfo) ModelPanel {
	panel := ModelPanel{
		Loaded:         "No",
		SequenceLength: NotAvailable,
		MSE:            NotAvailable,
		MAE:            NotAvailable,
		R2:             NotAvailable,
		RMSE:           NotAvailable,
		Summary:        "No model summary available",
	}
	if info == nil {
		return panel
	}

	panel.Available = true
	if info.ModelLoaded {
		panel.Loaded = "Yes"
	}
	if info.SequenceLength > 0 {
		panel.SequenceLength = strconv.Itoa(info.SequenceLength)
	}
	if p := info.Performance; p != nil {
		panel.MSE = FormatMetric(p.MSE)
		panel.MAE = FormatMetric(p.MAE)
		panel.R2 = FormatMetric(p.R2)
		panel.RMSE = FormatMetric(p.RMSE)
	}
	if len(info.ModelSummary) > 0 {
		panel.Summary = strings.Join(info.ModelSummary, "\n")
	}
	return panel
}

func projectChart(snap state.Snapshot) Chart {
	c := Chart{
		Dates:         make([]string, len(snap.Historical)),
		Price:         make([]float64, len(snap.Historical)),
		Indicators:    []ChartSeries{},
		ForecastDates: make([]string, len(snap.Predictions)),
		Forecast:      make([]float64, len(snap.Predictions)),
	}
	for i, p := range snap.Historical {
		c.Dates[i] = p.Date
		c.Price[i] = p.Price
	}
	for i, p := range snap.Predictions {
		c.ForecastDates[i] = p.Date
		c.Forecast[i] = p.PredictedPrice
	}

	if !snap.View.ShowIndicators {
		return c
	}
	for _, code := range snap.View.SelectedIndicators {
		s := ChartSeries{Name: string(code), Values: make([]*float64, len(snap.Historical))}
		for i, p := range snap.Historical {
			if v, ok := p.Indicator(code); ok {
				v := v
				s.Values[i] = &v
			}
		}
		c.Indicators = append(c.Indicators, s)
	}
	return c
}
