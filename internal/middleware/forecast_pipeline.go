package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NiftyDash/internal/domain/models"
	domrepo "NiftyDash/internal/domain/repository"
	"NiftyDash/pkg/logger"
)

// Proc is the minimal recorder interface the pipeline needs.
type Proc interface {
	Record(ctx context.Context, rec *models.ForecastRecord) error
}

// ForecastPipeline sits between the orchestrator and the forecast sink.
// It validates records, forwards them, and buffers for retry while the sink
// is unavailable.
type ForecastPipeline struct {
	proc       Proc
	metrics    domrepo.Metrics
	log        *logger.Logger
	bufSize    int
	bufCh      chan *models.ForecastRecord
	stopCh     chan struct{}
	done       chan struct{}
	started    bool
	stopped    bool
	mu         sync.Mutex
	minBackoff time.Duration
	maxBackoff time.Duration
}

type PipelineOption func(*ForecastPipeline)

// WithBufferSize sets the retry buffer size.
func WithBufferSize(n int) PipelineOption {
	return func(p *ForecastPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithRetryBackoff sets the first and the largest retry delay.
func WithRetryBackoff(min, max time.Duration) PipelineOption {
	return func(p *ForecastPipeline) {
		if min > 0 && max >= min {
			p.minBackoff = min
			p.maxBackoff = max
		}
	}
}

func WithLogger(l *logger.Logger) PipelineOption {
	return func(p *ForecastPipeline) { p.log = l }
}

// NewForecastPipeline creates a new pipeline.
func NewForecastPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *ForecastPipeline {
	p := &ForecastPipeline{
		proc:       proc,
		metrics:    metrics,
		log:        logger.Nop(),
		bufSize:    64,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
		minBackoff: 50 * time.Millisecond,
		maxBackoff: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.ForecastRecord, p.bufSize)
	return p
}

// Start launches background retries of buffered records. A pipeline is
// single-use: Start after Stop does nothing.
func (p *ForecastPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.done)
		backoff := p.minBackoff
		for {
			select {
			case <-p.stopCh:
				return
			case rec := <-p.bufCh:
				if err := p.proc.Record(ctx, rec); err != nil {
					p.recordError("pipeline_retry")
					select {
					case <-time.After(backoff):
					case <-p.stopCh:
						p.log.Warn("forecast dropped at shutdown", logger.String("forecast_id", rec.ID))
						return
					}
					if backoff *= 2; backoff > p.maxBackoff {
						backoff = p.maxBackoff
					}
					select {
					case p.bufCh <- rec:
					default:
						p.recordError("pipeline_buffer_drop")
					}
				} else {
					backoff = p.minBackoff
				}
			}
		}
	}()
}

// Stop stops the background retries. Records still buffered are dropped.
func (p *ForecastPipeline) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.stopCh)
	<-p.done
	if n := len(p.bufCh); n > 0 {
		p.log.Warn("forecast pipeline stopped with pending records", logger.Int("pending", n))
	}
}

// Record validates rec and forwards it downstream, buffering it for retry on
// failure.
func (p *ForecastPipeline) Record(ctx context.Context, rec *models.ForecastRecord) error {
	if err := validateRecord(rec); err != nil {
		p.recordError("pipeline_validate")
		return err
	}

	if err := p.proc.Record(ctx, rec); err != nil {
		select {
		case p.bufCh <- rec:
		default:
			p.recordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	return nil
}

func (p *ForecastPipeline) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}

func validateRecord(rec *models.ForecastRecord) error {
	if rec == nil {
		return fmt.Errorf("forecast nil")
	}
	if rec.ID == "" {
		return fmt.Errorf("forecast id empty")
	}
	if len(rec.Predictions) != rec.RequestedDays {
		return fmt.Errorf("forecast has %d points for %d days", len(rec.Predictions), rec.RequestedDays)
	}
	for i, pt := range rec.Predictions {
		if pt.Day != i+1 {
			return fmt.Errorf("forecast day %d out of sequence", pt.Day)
		}
	}
	return nil
}
