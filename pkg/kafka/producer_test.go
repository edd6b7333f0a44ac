package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestProducerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ProducerOption
		wantErr bool
	}{
		{"defaults with broker", []ProducerOption{WithBrokers([]string{"k:9092"})}, false},
		{"no brokers", nil, true},
		{"blank broker", []ProducerOption{WithBrokers([]string{""})}, true},
		{"bad acks", []ProducerOption{WithBrokers([]string{"k:9092"}), WithRequiredAcks(2)}, true},
		{"bad codec", []ProducerOption{WithBrokers([]string{"k:9092"}), WithCompression("brotli")}, true},
		{"no compression", []ProducerOption{WithBrokers([]string{"k:9092"}), WithCompression("")}, false},
		{"zero attempts", []ProducerOption{WithBrokers([]string{"k:9092"}), WithMaxAttempts(0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultProducerConfig()
			for _, opt := range tt.opts {
				opt(&cfg)
			}
			if err := cfg.validate(); (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithBatchingKeepsDefaults(t *testing.T) {
	cfg := defaultProducerConfig()
	WithBatching(0, 2048, 0)(&cfg)

	def := defaultProducerConfig()
	if cfg.BatchSize != def.BatchSize || cfg.BatchTimeout != def.BatchTimeout {
		t.Fatalf("zero thresholds overrode defaults: %+v", cfg)
	}
	if cfg.BatchBytes != 2048 {
		t.Fatalf("BatchBytes = %d, want 2048", cfg.BatchBytes)
	}
}

func TestNewProducerWriter(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"k1:9092", "k2:9092"}),
		WithCompression("zstd"),
		WithClientID("dash-test"),
	)
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	defer p.Close()

	if p.writer.Compression != kafka.Zstd {
		t.Fatalf("Compression = %v, want zstd", p.writer.Compression)
	}
	if _, ok := p.writer.Balancer.(*kafka.Hash); !ok {
		t.Fatalf("Balancer = %T, want *kafka.Hash", p.writer.Balancer)
	}
	tr, ok := p.writer.Transport.(*kafka.Transport)
	if !ok || tr.ClientID != "dash-test" {
		t.Fatalf("Transport = %#v", p.writer.Transport)
	}
}

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name        string
		in          interface{}
		want        string
		contentType string
	}{
		{"bytes", []byte("raw"), "raw", "application/octet-stream"},
		{"string", "text", "text", "text/plain"},
		{"struct", struct {
			ID   string `json:"id"`
			Days int    `json:"days"`
		}{"f1", 3}, `{"id":"f1","days":3}`, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ct, err := encodeValue(tt.in)
			if err != nil {
				t.Fatalf("encodeValue: %v", err)
			}
			if string(got) != tt.want || ct != tt.contentType {
				t.Fatalf("encodeValue = %s %s, want %s %s", got, ct, tt.want, tt.contentType)
			}
		})
	}

	if _, _, err := encodeValue(make(chan int)); err == nil {
		t.Fatalf("expected marshal error for channel")
	}
}
