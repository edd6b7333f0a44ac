package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NiftyDash/internal/domain/models"
	domsvc "NiftyDash/internal/domain/service"
	"NiftyDash/internal/state"
	"NiftyDash/pkg/logger"
)

const (
	msgTraining       = "Training model..."
	msgPredicting     = "Generating predictions..."
	msgRefreshing     = "Refreshing historical data..."
	msgTrained        = "Model trained successfully"
	msgPredicted      = "Predictions generated successfully"
	msgRefreshed      = "Historical data refreshed successfully"
	msgRefreshFailed  = "Failed to refresh historical data"
	opView            = "view"
	predictionDaysMsg = "Prediction days must be between %d and %d"
)

// ForecastHandler receives every applied forecast. Implemented by
// ForecastRecorder and the forecast pipeline in front of it.
type ForecastHandler interface {
	Record(ctx context.Context, rec *models.ForecastRecord) error
}

// Orchestrator is the single entry point for user actions and startup
// fetches. Remote calls run on their own goroutines; every resolution is
// written to the store in one Update.
type Orchestrator struct {
	gw       domsvc.PredictionGateway
	store    *state.Store
	recorder ForecastHandler
	log      *logger.Logger
	wg       sync.WaitGroup
}

// NewOrchestrator creates a new Orchestrator. recorder may be nil.
func NewOrchestrator(gw domsvc.PredictionGateway, store *state.Store, recorder ForecastHandler, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{gw: gw, store: store, recorder: recorder, log: log}
}

func (o *Orchestrator) Store() *state.Store { return o.store }

// Start fires the four startup fetches. Failures are logged and leave the
// slice at its default; the notification channel is not touched.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	o.CheckHealth(ctx)

	histGen := o.store.Issue(models.SliceHistorical)
	o.spawn(func() {
		res := o.gw.FetchHistorical(ctx)
		if !res.IsOk() {
			o.logStartupFailure(models.OpHistorical, res.Err())
			return
		}
		o.store.ApplyHistorical(histGen, res.Value())
	})

	linksGen := o.store.Issue(models.SliceMarketLinks)
	o.spawn(func() {
		res := o.gw.FetchMarketLinks(ctx)
		if !res.IsOk() {
			o.logStartupFailure(models.OpMarketLinks, res.Err())
			return
		}
		o.store.ApplyMarketLinks(linksGen, res.Value())
	})

	o.refreshModelInfo(ctx)
}

// CheckHealth re-runs the health probe. It always starts.
func (o *Orchestrator) CheckHealth(ctx context.Context) bool {
	ctx = context.WithoutCancel(ctx)
	gen := o.store.Issue(models.SliceHealth)
	o.spawn(func() {
		o.store.ApplyHealth(gen, o.gw.CheckHealth(ctx))
	})
	return true
}

// Predict requests a forecast for the view's current horizon.
func (o *Orchestrator) Predict(ctx context.Context) bool {
	started, _ := o.PredictDays(ctx, o.store.View().PredictionDays)
	return started
}

// PredictDays requests a days-long forecast. It returns false without side
// effects while train or predict is in flight. An out-of-range days fails the
// action slot immediately and returns an invalid argument error.
func (o *Orchestrator) PredictDays(ctx context.Context, days int) (bool, error) {
	if !models.ValidPredictionDays(days) {
		gerr := domsvc.NewGatewayError(domsvc.KindInvalidArgument, string(models.OpPredict),
			fmt.Sprintf(predictionDaysMsg, models.MinPredictionDays, models.MaxPredictionDays), nil)
		rejected := false
		o.store.Update(func(tx *state.Tx) {
			if tx.Slot(models.SlotAction).Loading() {
				return
			}
			tx.SetSlot(models.SlotAction, models.StatusFailed, models.OpPredict, gerr.Message)
			tx.Notify(models.SeverityError, gerr.Message, models.OpPredict)
			rejected = true
		})
		if !rejected {
			return false, nil
		}
		return false, gerr
	}

	var (
		started bool
		gen     uint64
		base    *float64
	)
	o.store.Update(func(tx *state.Tx) {
		if tx.Slot(models.SlotAction).Loading() {
			return
		}
		tx.SetSlot(models.SlotAction, models.StatusLoading, models.OpPredict, "")
		tx.Notify(models.SeverityInfo, msgPredicting, models.OpPredict)
		gen = tx.Issue(models.SlicePredictions)
		if p, ok := tx.LastPrice(); ok {
			base = &p
		}
		started = true
	})
	if !started {
		return false, nil
	}

	ctx = context.WithoutCancel(ctx)
	issuedAt := time.Now()
	o.spawn(func() {
		res := o.gw.Predict(ctx, days)

		applied := false
		o.store.Update(func(tx *state.Tx) {
			if !res.IsOk() {
				if !tx.Current(models.SlicePredictions, gen) {
					return
				}
				tx.SetSlot(models.SlotAction, models.StatusFailed, models.OpPredict, res.Err().Message)
				tx.Notify(models.SeverityError, res.Err().Message, models.OpPredict)
				return
			}
			if !tx.ApplyPredictions(gen, res.Value()) {
				return
			}
			tx.SetSlot(models.SlotAction, models.StatusSucceeded, models.OpPredict, msgPredicted)
			tx.Notify(models.SeveritySuccess, msgPredicted, models.OpPredict)
			applied = true
		})

		if !res.IsOk() {
			o.logActionFailure(models.OpPredict, res.Err())
			return
		}
		if applied {
			o.record(ctx, NewRecord(gen, days, base, issuedAt, res.Value()))
		}
	})
	return true, nil
}

// Train retrains the remote model and re-fetches model info on success.
func (o *Orchestrator) Train(ctx context.Context) bool {
	if !o.begin(models.SlotAction, models.OpTrain, msgTraining) {
		return false
	}

	ctx = context.WithoutCancel(ctx)
	o.spawn(func() {
		res := o.gw.Train(ctx)
		if !res.IsOk() {
			o.finish(models.SlotAction, models.OpTrain, models.StatusFailed, models.SeverityError, res.Err().Message)
			o.logActionFailure(models.OpTrain, res.Err())
			return
		}
		msg := res.Value()
		if msg == "" {
			msg = msgTrained
		}
		o.finish(models.SlotAction, models.OpTrain, models.StatusSucceeded, models.SeveritySuccess, msg)
		o.refreshModelInfo(ctx)
	})
	return true
}

// RefreshHistorical reloads the price series on the refresh slot. It
// supersedes any in-flight startup fetch of the series.
func (o *Orchestrator) RefreshHistorical(ctx context.Context) bool {
	var (
		started bool
		gen     uint64
	)
	o.store.Update(func(tx *state.Tx) {
		if tx.Slot(models.SlotRefresh).Loading() {
			return
		}
		tx.SetSlot(models.SlotRefresh, models.StatusLoading, models.OpRefresh, "")
		tx.Notify(models.SeverityInfo, msgRefreshing, models.OpRefresh)
		gen = tx.Issue(models.SliceHistorical)
		started = true
	})
	if !started {
		return false
	}

	ctx = context.WithoutCancel(ctx)
	o.spawn(func() {
		res := o.gw.FetchHistorical(ctx)
		o.store.Update(func(tx *state.Tx) {
			if !res.IsOk() {
				if !tx.Current(models.SliceHistorical, gen) {
					return
				}
				msg := msgRefreshFailed
				if res.Err().Kind == domsvc.KindBusiness {
					msg = res.Err().Message
				}
				tx.SetSlot(models.SlotRefresh, models.StatusFailed, models.OpRefresh, msg)
				tx.Notify(models.SeverityError, msg, models.OpRefresh)
				return
			}
			if !tx.ApplyHistorical(gen, res.Value()) {
				return
			}
			tx.SetSlot(models.SlotRefresh, models.StatusSucceeded, models.OpRefresh, msgRefreshed)
			tx.Notify(models.SeveritySuccess, msgRefreshed, models.OpRefresh)
		})
		if !res.IsOk() {
			o.logActionFailure(models.OpRefresh, res.Err())
		}
	})
	return true
}

// Wait blocks until every in-flight call has resolved.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) SetActiveTab(tab string) error {
	t, err := models.ParseTab(tab)
	if err != nil {
		return invalidView(err.Error())
	}
	o.store.UpdateView(func(v *models.ViewState) { v.ActiveTab = t })
	return nil
}

func (o *Orchestrator) SetPredictionDays(days int) error {
	if !models.ValidPredictionDays(days) {
		return invalidView(fmt.Sprintf(predictionDaysMsg, models.MinPredictionDays, models.MaxPredictionDays))
	}
	o.store.UpdateView(func(v *models.ViewState) { v.PredictionDays = days })
	return nil
}

func (o *Orchestrator) SetShowIndicators(show bool) {
	o.store.UpdateView(func(v *models.ViewState) { v.ShowIndicators = show })
}

func (o *Orchestrator) SetSelectedIndicators(names []string) error {
	set, err := models.NewIndicatorSet(names...)
	if err != nil {
		return invalidView(err.Error())
	}
	o.store.UpdateView(func(v *models.ViewState) { v.SelectedIndicators = set })
	return nil
}

// ApplyView validates every field of req and applies them in one update.
// Nothing changes when any field is invalid.
func (o *Orchestrator) ApplyView(req models.ViewUpdateRequest) error {
	var (
		tab models.Tab
		set models.IndicatorSet
		err error
	)
	if req.ActiveTab != nil {
		if tab, err = models.ParseTab(*req.ActiveTab); err != nil {
			return invalidView(err.Error())
		}
	}
	if req.PredictionDays != nil && !models.ValidPredictionDays(*req.PredictionDays) {
		return invalidView(fmt.Sprintf(predictionDaysMsg, models.MinPredictionDays, models.MaxPredictionDays))
	}
	if req.SelectedIndicators != nil {
		if set, err = models.NewIndicatorSet(*req.SelectedIndicators...); err != nil {
			return invalidView(err.Error())
		}
	}

	o.store.UpdateView(func(v *models.ViewState) {
		if req.ActiveTab != nil {
			v.ActiveTab = tab
		}
		if req.PredictionDays != nil {
			v.PredictionDays = *req.PredictionDays
		}
		if req.ShowIndicators != nil {
			v.ShowIndicators = *req.ShowIndicators
		}
		if req.SelectedIndicators != nil {
			v.SelectedIndicators = set
		}
	})
	return nil
}

func invalidView(msg string) *domsvc.GatewayError {
	return domsvc.NewGatewayError(domsvc.KindInvalidArgument, opView, msg, nil)
}

func (o *Orchestrator) begin(slot models.Slot, kind models.OperationKind, progress string) bool {
	started := false
	o.store.Update(func(tx *state.Tx) {
		if tx.Slot(slot).Loading() {
			return
		}
		tx.SetSlot(slot, models.StatusLoading, kind, "")
		tx.Notify(models.SeverityInfo, progress, kind)
		started = true
	})
	return started
}

func (o *Orchestrator) finish(slot models.Slot, kind models.OperationKind, status models.OperationStatus, sev models.Severity, msg string) {
	o.store.Update(func(tx *state.Tx) {
		tx.SetSlot(slot, status, kind, msg)
		tx.Notify(sev, msg, kind)
	})
}

func (o *Orchestrator) refreshModelInfo(ctx context.Context) {
	gen := o.store.Issue(models.SliceModelInfo)
	o.spawn(func() {
		res := o.gw.FetchModelInfo(ctx)
		if !res.IsOk() {
			o.logStartupFailure(models.OpModelInfo, res.Err())
			return
		}
		o.store.ApplyModelInfo(gen, res.Value())
	})
}

func (o *Orchestrator) record(ctx context.Context, rec *models.ForecastRecord) {
	if o.recorder == nil {
		return
	}
	o.spawn(func() {
		if err := o.recorder.Record(ctx, rec); err != nil {
			o.log.Warn("forecast not recorded",
				logger.String("forecast_id", rec.ID),
				logger.Error(err),
			)
		}
	})
}

func (o *Orchestrator) spawn(fn func()) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		fn()
	}()
}

func (o *Orchestrator) logStartupFailure(op models.OperationKind, err *domsvc.GatewayError) {
	o.log.Warn("fetch failed",
		logger.String("operation", string(op)),
		logger.String("kind", string(err.Kind)),
		logger.Error(err),
	)
}

func (o *Orchestrator) logActionFailure(op models.OperationKind, err *domsvc.GatewayError) {
	o.log.Info("action failed",
		logger.String("operation", string(op)),
		logger.String("kind", string(err.Kind)),
		logger.String("message", err.Message),
	)
}
