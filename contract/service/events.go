package service

import "context"

// EventName identifies a real-time mutation event.
type EventName string

const (
	Created EventName = "created"
	Updated EventName = "updated"
	Patched EventName = "patched"
	Removed EventName = "removed"
)

// EventNames lists the mutation events in a stable order.
var EventNames = []EventName{Created, Updated, Patched, Removed}

// Handler receives the mutated record of an event.
type Handler func(r Record)

// Subscription cancels an event subscription.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() { f() }

// Events is the subscribe/unsubscribe half of a remote service.
type Events interface {
	Subscribe(name EventName, h Handler) Subscription
}

// Event is the transport shape of a mutation event.
type Event struct {
	Service string    `json:"service"`
	Name    EventName `json:"event"`
	Record  Record    `json:"record"`
}

// Topic returns the default routing topic of the event.
func (e Event) Topic() string { return TopicPrefix + e.Service + "." + string(e.Name) }

// TopicPrefix prefixes every service event topic.
const TopicPrefix = "services."

// PublishOptions controls event publishing.
type PublishOptions struct {
	TopicOverride string
	Key           string
	Headers       map[string]string
}

// EventPublisher forwards service events to a broker.
// Library users provide an implementation that maps to Kafka/NATS/RabbitMQ etc.
type EventPublisher interface {
	Publish(ctx context.Context, e Event, opts PublishOptions) error
}

// HeaderPropagator abstracts injecting tracing context into headers.
// Implementations must be safe for concurrent use.
type HeaderPropagator interface {
	Inject(ctx context.Context, headers map[string]string)
}

// NopHeaderPropagator leaves headers untouched. Adapters use it when tracing is disabled.
type NopHeaderPropagator struct{}

func (NopHeaderPropagator) Inject(context.Context, map[string]string) {}
