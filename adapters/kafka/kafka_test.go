package kafka_test

import (
	"context"
	"errors"
	"testing"

	"github.com/next-trace/scg-service-state/adapters/kafka"
	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
)

type write struct {
	topic   string
	key     []byte
	value   []byte
	headers map[string]string
}

type fakeWriter struct {
	calls []write
	err   error
}

func (f *fakeWriter) Write(_ context.Context, topic string, key, value []byte, headers map[string]string) error {
	f.calls = append(f.calls, write{topic, key, value, headers})

	return f.err
}

func patched() service.Event {
	return service.Event{Service: "messages", Name: service.Patched, Record: service.Record{"id": 3}}
}

func TestKafka_Publish(t *testing.T) {
	fw := &fakeWriter{}
	ad := kafka.New(fw)

	if err := ad.Publish(t.Context(), patched(), service.PublishOptions{Key: "3", Headers: map[string]string{"ph": "pv"}}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(fw.calls) != 1 {
		t.Fatalf("want 1, got %d", len(fw.calls))
	}

	p := fw.calls[0]
	if p.topic != "services.messages.patched" {
		t.Fatalf("topic: %s", p.topic)
	}

	if string(p.key) != "3" || len(p.value) == 0 {
		t.Fatalf("key=%s value=%s", p.key, p.value)
	}

	if p.headers["ph"] != "pv" || p.headers["service"] != "messages" || p.headers["event"] != "patched" {
		t.Fatalf("pub headers: %+v", p.headers)
	}

	if err := ad.Publish(t.Context(), patched(), service.PublishOptions{TopicOverride: "audit"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if fw.calls[1].topic != "audit" || fw.calls[1].key != nil {
		t.Fatalf("override: %+v", fw.calls[1])
	}
}

func TestKafka_NilWriterError(t *testing.T) {
	ad := kafka.New(nil)
	if err := ad.Publish(t.Context(), patched(), service.PublishOptions{}); !errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("want ErrPublishFailed, got %v", err)
	}
}

func TestKafka_WriteErrors(t *testing.T) {
	ad := kafka.New(&fakeWriter{err: errors.New("broker gone")})
	if err := ad.Publish(t.Context(), patched(), service.PublishOptions{}); !errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("want ErrPublishFailed, got %v", err)
	}

	ad = kafka.New(&fakeWriter{err: context.DeadlineExceeded})
	if err := ad.Publish(t.Context(), patched(), service.PublishOptions{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	fw := &fakeWriter{}
	if err := kafka.New(fw).Publish(ctx, patched(), service.PublishOptions{}); !errors.Is(err, context.Canceled) || len(fw.calls) != 0 {
		t.Fatalf("canceled context must short-circuit, got %v", err)
	}
}

func TestNewWithKgo_Validation(t *testing.T) {
	if _, _, err := kafka.NewWithKgo(kafka.Config{}); !errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("want ErrPublishFailed, got %v", err)
	}

	cfg := kafka.Config{Brokers: []string{"localhost:9092"}, SASL: &kafka.SASLConfig{Mechanism: "GSSAPI"}}
	if _, _, err := kafka.NewWithKgo(cfg); !errors.Is(err, serr.ErrConfigInvalid) {
		t.Fatalf("want ErrConfigInvalid, got %v", err)
	}
}
