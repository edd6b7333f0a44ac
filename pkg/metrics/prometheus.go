package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	gatewayCalls    *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
	slotTransitions *prometheus.CounterVec
	staleDiscards   *prometheus.CounterVec
	stateChanges    *prometheus.CounterVec
	subscribers     prometheus.Gauge
	forecastsSent   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		gatewayCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "niftydash",
				Subsystem: "gateway",
				Name:      "calls_total",
				Help:      "Remote prediction service calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		gatewayLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "niftydash",
				Subsystem: "gateway",
				Name:      "latency_seconds",
				Help:      "Latency of remote prediction service calls",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		slotTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "niftydash",
				Subsystem: "state",
				Name:      "slot_transitions_total",
				Help:      "Operation slot transitions by slot and target status",
			},
			[]string{"slot", "status"},
		),
		staleDiscards: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "niftydash",
				Subsystem: "state",
				Name:      "stale_discards_total",
				Help:      "Resolutions discarded because a newer call superseded them",
			},
			[]string{"slice"},
		),
		stateChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "niftydash",
				Subsystem: "state",
				Name:      "changes_total",
				Help:      "Applied state mutations by slice",
			},
			[]string{"slice"},
		),
		subscribers: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "niftydash",
				Subsystem: "state",
				Name:      "subscribers",
				Help:      "Current number of state change subscribers",
			},
		),
		forecastsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "niftydash",
				Subsystem: "sink",
				Name:      "forecasts_total",
				Help:      "Forecast records handed to the sink by backend and outcome",
			},
			[]string{"sink", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "niftydash",
				Name:      "errors_total",
				Help:      "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordGatewayCall records one remote call. outcome is "ok" or the error kind.
func (r *Recorder) RecordGatewayCall(op, outcome string, seconds float64) {
	r.gatewayCalls.WithLabelValues(op, outcome).Inc()
	r.gatewayLatency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordSlotTransition(slot, status string) {
	r.slotTransitions.WithLabelValues(slot, status).Inc()
}

func (r *Recorder) RecordStaleDiscard(slice string) {
	r.staleDiscards.WithLabelValues(slice).Inc()
}

func (r *Recorder) RecordStateChange(slice string) {
	r.stateChanges.WithLabelValues(slice).Inc()
}

func (r *Recorder) SetSubscribers(n int) {
	r.subscribers.Set(float64(n))
}

func (r *Recorder) RecordForecastSent(sink, outcome string) {
	r.forecastsSent.WithLabelValues(sink, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordGatewayCall(string, string, float64) {}
func (Noop) RecordSlotTransition(string, string)        {}
func (Noop) RecordStaleDiscard(string)                  {}
func (Noop) RecordStateChange(string)                   {}
func (Noop) SetSubscribers(int)                         {}
func (Noop) RecordForecastSent(string, string)          {}
func (Noop) RecordError(string)                         {}
