package memory

import (
	"sync"

	"github.com/next-trace/scg-service-state/contract/service"
)

// emitter fans mutation events out to local subscribers in subscription order.
type emitter struct {
	emu    *sync.Mutex
	nextID int
	subs   map[service.EventName][]subscriber
}

type subscriber struct {
	id int
	h  service.Handler
}

func newEmitter() emitter {
	return emitter{emu: &sync.Mutex{}, subs: make(map[service.EventName][]subscriber)}
}

// Subscribe registers h for the named event.
func (e *emitter) Subscribe(name service.EventName, h service.Handler) service.Subscription { //nolint:ireturn
	e.emu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[name] = append(e.subs[name], subscriber{id: id, h: h})
	e.emu.Unlock()

	return service.SubscriptionFunc(func() {
		e.emu.Lock()
		defer e.emu.Unlock()

		list := e.subs[name]
		for i, s := range list {
			if s.id == id {
				e.subs[name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	})
}

func (e *emitter) emit(name service.EventName, r service.Record) {
	e.emu.Lock()
	list := append([]subscriber(nil), e.subs[name]...)
	e.emu.Unlock()

	for _, s := range list {
		s.h(r.Clone())
	}
}
