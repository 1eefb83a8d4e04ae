package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
)

// DefaultExchange is the topic exchange service events are published to.
const DefaultExchange = "services"

type PubMsg struct {
	Exchange   string
	RoutingKey string
	Body       []byte
	Headers    map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, m PubMsg) error
}

type Adapter struct {
	Publisher  Publisher
	Exchange   string                   // empty selects DefaultExchange
	Propagator service.HeaderPropagator // injects tracing context into headers; nil skips injection
}

var _ service.EventPublisher = (*Adapter)(nil)

// New publishes through p without tracing propagation.
func New(p Publisher) *Adapter {
	return &Adapter{Publisher: p, Propagator: service.NopHeaderPropagator{}}
}

// NewWithPropagator allows configuring a HeaderPropagator for context propagation.
// A nil hp behaves like New.
func NewWithPropagator(p Publisher, hp service.HeaderPropagator) *Adapter {
	ad := New(p)
	if hp != nil {
		ad.Propagator = hp
	}

	return ad
}

// Publish sends e as JSON to the exchange, routed by its topic.
func (a *Adapter) Publish(ctx context.Context, e service.Event, opts service.PublishOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if a.Publisher == nil {
		return fmt.Errorf("rabbitmq publish: %w", serr.ErrPublishFailed)
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("rabbitmq publish serialize: %w", errors.Join(serr.ErrSerializationFailed, err))
	}

	// copy headers to avoid mutating caller-provided map
	hdrs := make(map[string]string, len(opts.Headers)+4)
	for k, v := range opts.Headers {
		hdrs[k] = v
	}

	if opts.Key != "" {
		hdrs["key"] = opts.Key
	}

	// Inject tracing context via configured propagator (keeps adapter decoupled)
	if a.Propagator != nil {
		a.Propagator.Inject(ctx, hdrs)
	}

	msg := PubMsg{
		Exchange:   a.exchange(),
		RoutingKey: routingForEvent(e, opts),
		Body:       body,
		Headers:    hdrs,
	}
	if err := a.Publisher.Publish(ctx, msg); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("rabbitmq publish: %w", errors.Join(serr.ErrPublishFailed, err))
	}

	return nil
}

func (a *Adapter) exchange() string {
	if a.Exchange == "" {
		return DefaultExchange
	}

	return a.Exchange
}

func routingForEvent(e service.Event, o service.PublishOptions) string {
	if o.TopicOverride != "" {
		return o.TopicOverride
	}

	return e.Topic()
}

func toTable(headers map[string]string) amqp.Table {
	if len(headers) == 0 {
		return nil
	}

	h := amqp.Table{}
	for k, v := range headers {
		h[k] = v
	}

	return h
}

type amqpChannelPublisher struct{ ch *amqp.Channel }

func (p amqpChannelPublisher) Publish(ctx context.Context, m PubMsg) error {
	return p.ch.PublishWithContext(
		ctx,
		m.Exchange,
		m.RoutingKey,
		false,
		false,
		amqp.Publishing{
			Headers:     toTable(m.Headers),
			Body:        m.Body,
			ContentType: "application/json",
		},
	)
}

// NewWithAMQPChannel publishes on an existing channel. The exchange must already exist.
func NewWithAMQPChannel(ch *amqp.Channel) *Adapter {
	return New(amqpChannelPublisher{ch: ch})
}
