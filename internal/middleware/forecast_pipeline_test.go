package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"NiftyDash/internal/domain/models"
)

type flakyProc struct {
	mu        sync.Mutex
	failFirst int
	calls     int
	at        []time.Time
	delivered []string
}

func (f *flakyProc) Record(_ context.Context, rec *models.ForecastRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.at = append(f.at, time.Now())
	if f.calls <= f.failFirst {
		return errors.New("sink down")
	}
	f.delivered = append(f.delivered, rec.ID)
	return nil
}

func (f *flakyProc) snapshot() (int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]string(nil), f.delivered...)
}

func record(id string, days int) *models.ForecastRecord {
	rec := &models.ForecastRecord{ID: id, RequestedDays: days}
	for i := 1; i <= days; i++ {
		rec.Predictions = append(rec.Predictions, models.PredictionPoint{Day: i, PredictedPrice: 21000})
	}
	return rec
}

func TestPipelineRejectsInvalidRecords(t *testing.T) {
	proc := &flakyProc{}
	p := NewForecastPipeline(proc, nil)

	bad := record("f-1", 3)
	bad.Predictions[1].Day = 5
	tests := []*models.ForecastRecord{nil, record("", 1), {ID: "f-2", RequestedDays: 3}, bad}
	for i, rec := range tests {
		if err := p.Record(context.Background(), rec); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if calls, _ := proc.snapshot(); calls != 0 {
		t.Fatalf("invalid records reached the sink: %d calls", calls)
	}
}

func TestPipelineRetriesBufferedRecords(t *testing.T) {
	proc := &flakyProc{failFirst: 2}
	p := NewForecastPipeline(proc, nil, WithRetryBackoff(time.Millisecond, 4*time.Millisecond))
	p.Start(context.Background())
	defer p.Stop()

	if err := p.Record(context.Background(), record("f-1", 2)); err == nil {
		t.Fatalf("first attempt should report the sink error")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, delivered := proc.snapshot(); len(delivered) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("buffered record never delivered")
		}
		time.Sleep(time.Millisecond)
	}
	if calls, delivered := proc.snapshot(); calls != 3 || delivered[0] != "f-1" {
		t.Fatalf("calls = %d delivered = %v", calls, delivered)
	}
}

func TestPipelineFirstRetryWaitsMinBackoff(t *testing.T) {
	proc := &flakyProc{failFirst: 2}
	p := NewForecastPipeline(proc, nil, WithRetryBackoff(100*time.Millisecond, time.Second))
	p.Start(context.Background())
	defer p.Stop()

	_ = p.Record(context.Background(), record("f-1", 1))
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, delivered := proc.snapshot(); len(delivered) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("buffered record never delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	proc.mu.Lock()
	// call 1 is the direct attempt, call 2 the immediate buffered one
	gap := proc.at[2].Sub(proc.at[1])
	proc.mu.Unlock()
	if gap < 100*time.Millisecond || gap >= 180*time.Millisecond {
		t.Fatalf("first retry after %v, want about 100ms", gap)
	}
}

func TestPipelineStopIsIdempotent(t *testing.T) {
	p := NewForecastPipeline(&flakyProc{}, nil)
	p.Stop()
	p.Start(context.Background())
	p.Stop()
	p.Stop()
}

func TestPipelineIsSingleUse(t *testing.T) {
	proc := &flakyProc{failFirst: 10}
	p := NewForecastPipeline(proc, nil, WithRetryBackoff(time.Millisecond, time.Millisecond))
	p.Start(context.Background())
	p.Stop()

	p.Start(context.Background())
	_ = p.Record(context.Background(), record("f-1", 1))
	time.Sleep(20 * time.Millisecond)
	if calls, _ := proc.snapshot(); calls != 1 {
		t.Fatalf("restarted pipeline retried: %d calls", calls)
	}
	p.Stop()
}
