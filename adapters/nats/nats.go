package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
)

// Client is a minimal NATS-like publisher interface decoupled from any concrete library.
// Users can provide a wrapper around their NATS connection to satisfy this.
type Client interface {
	// Publish publishes a message to a subject with optional headers.
	Publish(subject string, data []byte, headers map[string]string) error
}

// Subscriber is the receiving half of a NATS-like connection.
type Subscriber interface {
	// Subscribe delivers the body of every message on subject to fn until the
	// returned func is called.
	Subscribe(subject string, fn func(data []byte)) (unsubscribe func(), err error)
}

// Adapter implements service.EventPublisher using an injected NATS-like Client.
type Adapter struct {
	Client Client
	Logger *slog.Logger
}

// Ensure Adapter implements the publisher contract.
var _ service.EventPublisher = (*Adapter)(nil)

// New creates a new NATS adapter instance with the provided client.
func New(c Client) *Adapter { return &Adapter{Client: c} }

// Publish sends e as JSON on its topic subject.
func (a *Adapter) Publish(ctx context.Context, e service.Event, opts service.PublishOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Client == nil {
		return fmt.Errorf("nats publish: %w", serr.ErrPublishFailed)
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("nats publish serialize: %w", errors.Join(serr.ErrSerializationFailed, err))
	}

	if err := a.Client.Publish(subjectFor(e, opts), body, publishHeaders(opts)); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("nats publish: %w", errors.Join(serr.ErrPublishFailed, err))
	}

	return nil
}

// Source returns the event source of the named service. The adapter's client
// must also implement Subscriber; otherwise subscriptions fail and are logged.
func (a *Adapter) Source(serviceName string) *Source {
	sub, _ := a.Client.(Subscriber)

	return &Source{Sub: sub, Service: serviceName, Logger: a.Logger}
}

// Source turns NATS messages published by Adapter back into service events.
type Source struct {
	Sub     Subscriber
	Service string
	Logger  *slog.Logger
}

var _ service.Events = (*Source)(nil)

// Subscribe delivers the records of the named event. Undecodable messages are
// dropped.
func (s *Source) Subscribe(name service.EventName, h service.Handler) service.Subscription { //nolint:ireturn
	subject := service.Event{Service: s.Service, Name: name}.Topic()

	if s.Sub == nil {
		s.warn("nats subscribe", subject, serr.ErrSubscribeFailed)
		return service.SubscriptionFunc(func() {})
	}

	unsubscribe, err := s.Sub.Subscribe(subject, func(data []byte) {
		var e service.Event
		if err := json.Unmarshal(data, &e); err != nil {
			s.warn("nats decode", subject, errors.Join(serr.ErrSerializationFailed, err))
			return
		}

		h(e.Record)
	})
	if err != nil {
		s.warn("nats subscribe", subject, errors.Join(serr.ErrSubscribeFailed, err))
		return service.SubscriptionFunc(func() {})
	}

	return service.SubscriptionFunc(unsubscribe)
}

func (s *Source) warn(msg, subject string, err error) {
	if s.Logger == nil {
		return
	}

	s.Logger.Warn(msg, slog.String("subject", subject), slog.Any("err", err))
}

// helpers

func subjectFor(e service.Event, o service.PublishOptions) string {
	if o.TopicOverride != "" {
		return o.TopicOverride
	}

	return e.Topic()
}

func publishHeaders(o service.PublishOptions) map[string]string {
	h := make(map[string]string, len(o.Headers)+1)
	for k, v := range o.Headers {
		h[k] = v
	}

	if o.Key != "" {
		h["key"] = o.Key
	}

	return h
}
