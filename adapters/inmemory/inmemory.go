package inmemory

import (
	"context"
	"sync"

	"github.com/next-trace/scg-service-state/contract/service"
)

// Publisher is a thread-safe in-memory implementation of service.EventPublisher.
// It records published events for testing and examples.
type Publisher struct {
	mu     sync.Mutex
	Events []service.Event
	Opts   []service.PublishOptions
}

var _ service.EventPublisher = (*Publisher)(nil)

func (p *Publisher) Publish(ctx context.Context, e service.Event, opts service.PublishOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	p.Events = append(p.Events, e)
	p.Opts = append(p.Opts, opts)
	p.mu.Unlock()

	return nil
}

// Bus is an in-process broker: events published to it are delivered to the
// subscribers of the publishing service, synchronously and in order.
type Bus struct {
	Publisher

	smu    sync.Mutex
	nextID int
	subs   map[string][]subscriber
}

type subscriber struct {
	id int
	h  service.Handler
}

var _ service.EventPublisher = (*Bus)(nil)

// New creates an empty bus.
func New() *Bus { return &Bus{subs: make(map[string][]subscriber)} }

// Publish records e and delivers it to subscribers of its topic.
func (b *Bus) Publish(ctx context.Context, e service.Event, opts service.PublishOptions) error {
	if err := b.Publisher.Publish(ctx, e, opts); err != nil {
		return err
	}

	topic := e.Topic()
	if opts.TopicOverride != "" {
		topic = opts.TopicOverride
	}

	b.smu.Lock()
	list := append([]subscriber(nil), b.subs[topic]...)
	b.smu.Unlock()

	for _, s := range list {
		s.h(e.Record.Clone())
	}

	return nil
}

// Source returns the event source of the named service.
func (b *Bus) Source(serviceName string) service.Events { //nolint:ireturn
	return source{bus: b, service: serviceName}
}

type source struct {
	bus     *Bus
	service string
}

func (s source) Subscribe(name service.EventName, h service.Handler) service.Subscription { //nolint:ireturn
	topic := service.Event{Service: s.service, Name: name}.Topic()

	b := s.bus
	b.smu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, h: h})
	b.smu.Unlock()

	return service.SubscriptionFunc(func() {
		b.smu.Lock()
		defer b.smu.Unlock()

		list := b.subs[topic]
		for i, sub := range list {
			if sub.id == id {
				b.subs[topic] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	})
}
