package realtime

import (
	"github.com/next-trace/scg-service-state/contract/action"
	"github.com/next-trace/scg-service-state/contract/service"
	"github.com/next-trace/scg-service-state/servicestate"
)

// Listen dispatches b's event actions for every mutation event src delivers,
// in delivery order. Unsubscribe the returned subscription to stop.
func Listen(src service.Events, b *servicestate.Bundle, dispatch action.Dispatch) service.Subscription { //nolint:ireturn
	subs := make([]service.Subscription, 0, len(service.EventNames))

	for _, name := range service.EventNames {
		subs = append(subs, src.Subscribe(name, func(r service.Record) {
			if a, ok := b.OnEvent(name, r); ok {
				dispatch(a)
			}
		}))
	}

	return service.SubscriptionFunc(func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
	})
}
