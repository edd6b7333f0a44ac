package state

import (
	"fmt"
	"reflect"
	"testing"

	"NiftyDash/internal/domain/models"
)

func f64(v float64) *float64 { return &v }

func predictions(n int, base float64) []models.PredictionPoint {
	out := make([]models.PredictionPoint, n)
	for i := range out {
		out[i] = models.PredictionPoint{Day: i + 1, Date: fmt.Sprintf("2024-02-%02d", i+1), PredictedPrice: base + float64(i)}
	}
	return out
}

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()

	if snap.Health != models.HealthUnknown {
		t.Fatalf("Health = %s, want unknown", snap.Health)
	}
	if snap.Action.Status != models.StatusIdle || snap.Refresh.Status != models.StatusIdle {
		t.Fatalf("slots not idle: %+v %+v", snap.Action, snap.Refresh)
	}
	if snap.View.PredictionDays != 7 || !snap.View.ShowIndicators {
		t.Fatalf("unexpected default view: %+v", snap.View)
	}
	if snap.Notification.Severity != models.SeverityNone {
		t.Fatalf("Notification = %+v, want none", snap.Notification)
	}
	if len(snap.Historical) != 0 || len(snap.Predictions) != 0 || snap.ModelInfo != nil {
		t.Fatalf("slices should start empty: %+v", snap)
	}
}

func TestBeginWhileLoadingIsNoop(t *testing.T) {
	s := NewStore()
	if !s.Begin(models.SlotAction, models.OpPredict) {
		t.Fatalf("first Begin should start")
	}
	gen := s.Issue(models.SlicePredictions)
	before := s.Snapshot()

	if s.Begin(models.SlotAction, models.OpPredict) {
		t.Fatalf("second predict Begin should be rejected")
	}
	if s.Begin(models.SlotAction, models.OpTrain) {
		t.Fatalf("train must share the action slot with predict")
	}

	after := s.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed by rejected Begin:\nbefore %+v\nafter  %+v", before, after)
	}
	if s.Generation(models.SlicePredictions) != gen {
		t.Fatalf("generation changed by rejected Begin")
	}

	if !s.Begin(models.SlotRefresh, models.OpRefresh) {
		t.Fatalf("refresh slot is independent of the action slot")
	}
}

func TestApplyPredictionsReplacesWholesale(t *testing.T) {
	s := NewStore()
	s.ApplyPredictions(s.Issue(models.SlicePredictions), predictions(7, 100))
	s.ApplyPredictions(s.Issue(models.SlicePredictions), predictions(5, 200))

	got := s.Snapshot().Predictions
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	for i, p := range got {
		if p.Day != i+1 || p.PredictedPrice != 200+float64(i) {
			t.Fatalf("unexpected point %d: %+v", i, p)
		}
	}
}

func TestStaleResolutionDiscarded(t *testing.T) {
	s := NewStore()
	older := s.Issue(models.SlicePredictions)
	newer := s.Issue(models.SlicePredictions)

	if !s.ApplyPredictions(newer, predictions(3, 21200)) {
		t.Fatalf("current generation must apply")
	}
	if s.ApplyPredictions(older, predictions(7, 1)) {
		t.Fatalf("stale generation must be discarded")
	}

	got := s.Snapshot().Predictions
	if len(got) != 3 || got[0].PredictedPrice != 21200 {
		t.Fatalf("stale resolution altered predictions: %+v", got)
	}
}

func TestStartupSlicesCommute(t *testing.T) {
	hist := []models.HistoricalPoint{{Date: "2024-01-01", Price: 21000}, {Date: "2024-01-02", Price: 21150, RSI: f64(55)}}
	links := []models.MarketLink{{Name: "NSE India", URL: "https://www.nseindia.com/"}}
	info := models.ModelInfo{ModelLoaded: true, SequenceLength: 60}

	apply := func(order []int) Snapshot {
		s := NewStore()
		gens := []uint64{
			s.Issue(models.SliceHealth),
			s.Issue(models.SliceHistorical),
			s.Issue(models.SliceMarketLinks),
			s.Issue(models.SliceModelInfo),
		}
		for _, i := range order {
			switch i {
			case 0:
				s.ApplyHealth(gens[0], models.HealthHealthy)
			case 1:
				s.ApplyHistorical(gens[1], hist)
			case 2:
				s.ApplyMarketLinks(gens[2], links)
			case 3:
				s.ApplyModelInfo(gens[3], info)
			}
		}
		snap := s.Snapshot()
		snap.Seq = 0
		return snap
	}

	a := apply([]int{0, 1, 2, 3})
	b := apply([]int{3, 1, 0, 2})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("final state depends on arrival order:\n%+v\n%+v", a, b)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewStore()
	s.ApplyHistorical(s.Issue(models.SliceHistorical), []models.HistoricalPoint{{Date: "2024-01-01", Price: 1, SMA20: f64(2)}})
	s.ApplyModelInfo(s.Issue(models.SliceModelInfo), models.ModelInfo{Performance: &models.Performance{R2: 0.5}, ModelSummary: []string{"a"}})

	snap := s.Snapshot()
	*snap.Historical[0].SMA20 = 99
	snap.Historical[0].Price = 99
	snap.ModelInfo.Performance.R2 = 99
	snap.ModelInfo.ModelSummary[0] = "z"
	snap.View.SelectedIndicators[0] = models.IndicatorBBLower

	again := s.Snapshot()
	if *again.Historical[0].SMA20 != 2 || again.Historical[0].Price != 1 {
		t.Fatalf("historical aliased: %+v", again.Historical[0])
	}
	if again.ModelInfo.Performance.R2 != 0.5 || again.ModelInfo.ModelSummary[0] != "a" {
		t.Fatalf("model info aliased: %+v", again.ModelInfo)
	}
	if again.View.SelectedIndicators[0] != models.IndicatorSMA20 {
		t.Fatalf("view aliased: %+v", again.View)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	s := NewStore()
	id, ch := s.Subscribe(4)

	s.ApplyHealth(s.Issue(models.SliceHealth), models.HealthHealthy)
	evt := <-ch
	if evt.Slice != models.SliceHealth || evt.Seq == 0 {
		t.Fatalf("unexpected event: %+v", evt)
	}

	s.Notify(models.SeverityInfo, "Generating predictions...", models.OpPredict)
	evt = <-ch
	if evt.Slice != models.SliceNotification || evt.Kind != models.OpPredict {
		t.Fatalf("unexpected event: %+v", evt)
	}

	s.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed after Unsubscribe")
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	s := NewStore()
	_, ch := s.Subscribe(1)

	for i := 0; i < 10; i++ {
		s.ApplyHealth(s.Issue(models.SliceHealth), models.HealthHealthy)
	}
	if len(ch) != 1 {
		t.Fatalf("buffer len = %d, want 1", len(ch))
	}
	s.Close()
}

func TestNotificationOverwrites(t *testing.T) {
	s := NewStore()
	s.Notify(models.SeverityInfo, "Training model...", models.OpTrain)
	s.Notify(models.SeverityError, "Failed to train model", models.OpTrain)

	n := s.Notification()
	if n.Severity != models.SeverityError || n.Message != "Failed to train model" {
		t.Fatalf("Notification = %+v", n)
	}
	if n.ID == "" || n.At.IsZero() {
		t.Fatalf("notification should carry id and timestamp: %+v", n)
	}
}

func TestUpdateViewIsolated(t *testing.T) {
	s := NewStore()
	s.UpdateView(func(v *models.ViewState) {
		v.PredictionDays = 14
		v.ActiveTab = models.TabPredictions
	})
	v := s.View()
	if v.PredictionDays != 14 || v.ActiveTab != models.TabPredictions {
		t.Fatalf("View = %+v", v)
	}
}
