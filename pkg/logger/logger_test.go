package logger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingPublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *recordingPublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func (p *recordingPublisher) all() []AggregatedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []AggregatedLogEntry
	for _, b := range p.batches {
		out = append(out, b...)
	}
	return out
}

func TestCollectorFoldsDuplicates(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, Topic: "logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		c.AddLog("error", "predict failed", map[string]interface{}{"days": 7}, "usecase/orchestrator.go:10")
	}
	c.AddLog("error", "refresh failed", nil, "usecase/orchestrator.go:20")
	if n := c.Pending(); n != 2 {
		t.Fatalf("Pending = %d, want 2", n)
	}

	c.Close()
	c.Close()

	got := pub.all()
	if len(got) != 2 || pub.topic != "logs" {
		t.Fatalf("published %+v to %q", got, pub.topic)
	}
	if got[0].Message != "predict failed" || got[0].Count != 3 {
		t.Fatalf("most frequent entry should come first: %+v", got[0])
	}
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})
	defer c.Close()

	c.AddLog("error", "a", nil, "x.go:1")
	c.AddLog("error", "b", nil, "x.go:2")

	deadline := time.Now().Add(2 * time.Second)
	for len(pub.all()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("threshold flush not published")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if c.Pending() != 0 {
		t.Fatalf("entries should be drained")
	}
}

func TestNamedChildSeesLateCollector(t *testing.T) {
	pub := &recordingPublisher{}
	root := Nop()
	child := root.Named("gateway")

	root.AddCollector(&CollectionConfig{TimeInterval: time.Hour, Publisher: pub})
	child.Error("prediction call failed", String("operation", "predict"), Error(errors.New("timeout")))
	child.Info("not collected")
	root.RemoveCollector()

	got := pub.all()
	if len(got) != 1 {
		t.Fatalf("published %d entries, want 1", len(got))
	}
	e := got[0]
	if e.Fields["operation"] != "predict" || e.Fields["error"] != "timeout" {
		t.Fatalf("Fields = %v", e.Fields)
	}
	if !strings.Contains(e.Caller, "logger_test.go") {
		t.Fatalf("Caller = %q", e.Caller)
	}

	child.Error("after removal")
	if len(pub.all()) != 1 {
		t.Fatalf("removed collector still receives logs")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	l, err := New(&Config{Level: "WARN", Output: "stderr"})
	if err != nil || l == nil {
		t.Fatalf("New: %v", err)
	}
}
