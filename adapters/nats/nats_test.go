package nats_test

import (
	"context"
	"errors"
	"testing"

	"github.com/next-trace/scg-service-state/adapters/nats"
	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
)

type call struct {
	subject string
	data    []byte
	headers map[string]string
}

// fakeClient loops published messages back to its subscribers.
type fakeClient struct {
	calls []call
	subs  map[string][]func([]byte)
	err   error
}

func (f *fakeClient) Publish(subject string, data []byte, headers map[string]string) error {
	f.calls = append(f.calls, call{subject, data, headers})
	if f.err != nil {
		return f.err
	}

	for _, fn := range f.subs[subject] {
		fn(data)
	}

	return nil
}

func (f *fakeClient) Subscribe(subject string, fn func([]byte)) (func(), error) {
	if f.subs == nil {
		f.subs = map[string][]func([]byte){}
	}

	f.subs[subject] = append(f.subs[subject], fn)

	return func() { delete(f.subs, subject) }, nil
}

type publishOnly struct{}

func (publishOnly) Publish(string, []byte, map[string]string) error { return nil }

func created(id any) service.Event {
	return service.Event{Service: "messages", Name: service.Created, Record: service.Record{"id": id, "text": "hi"}}
}

func TestNATS_Publish(t *testing.T) {
	fc := &fakeClient{}
	ad := nats.New(fc)

	if err := ad.Publish(t.Context(), created(1), service.PublishOptions{Key: "1", Headers: map[string]string{"ph": "pv"}}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	c := fc.calls[0]
	if c.subject != "services.messages.created" {
		t.Fatalf("subject mismatch: %s", c.subject)
	}

	if len(c.data) == 0 || c.headers["key"] != "1" || c.headers["ph"] != "pv" {
		t.Fatalf("unexpected call %+v", c)
	}

	if err := ad.Publish(t.Context(), created(2), service.PublishOptions{TopicOverride: "audit"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if fc.calls[1].subject != "audit" {
		t.Fatalf("topic override ignored: %s", fc.calls[1].subject)
	}
}

func TestNATS_NilClientError(t *testing.T) {
	ad := nats.New(nil)

	if err := ad.Publish(t.Context(), created(1), service.PublishOptions{}); !errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("want ErrPublishFailed, got %v", err)
	}
}

func TestNATS_Publish_ErrorWrapping_And_ContextCancel(t *testing.T) {
	ad := nats.New(&fakeClient{err: errors.New("boom")})

	if err := ad.Publish(t.Context(), created(1), service.PublishOptions{}); !errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	ad2 := nats.New(&fakeClient{err: context.Canceled})

	err := ad2.Publish(t.Context(), created(1), service.PublishOptions{})
	if !errors.Is(err, context.Canceled) || errors.Is(err, serr.ErrPublishFailed) {
		t.Fatalf("want bare context.Canceled, got %v", err)
	}
}

func TestNATS_SourceRoundTrip(t *testing.T) {
	fc := &fakeClient{}
	ad := nats.New(fc)

	var got []service.Record

	sub := ad.Source("messages").Subscribe(service.Created, func(r service.Record) { got = append(got, r) })

	_ = ad.Publish(t.Context(), created(7), service.PublishOptions{})
	sub.Unsubscribe()
	_ = ad.Publish(t.Context(), created(8), service.PublishOptions{})

	if len(got) != 1 || got[0]["id"] != float64(7) || got[0]["text"] != "hi" {
		t.Fatalf("unexpected deliveries %v", got)
	}
}

func TestNATS_SourceWithoutSubscriber(t *testing.T) {
	sub := nats.New(publishOnly{}).Source("messages").Subscribe(service.Removed, func(service.Record) {})
	sub.Unsubscribe()
}
