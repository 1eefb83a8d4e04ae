package service

import "context"

// Service is the remote data-service collaborator bound by the binder.
// Every call blocks until the remote side answers; the binder runs them on
// promise goroutines. Implementations must be safe for concurrent use.
type Service interface {
	Find(ctx context.Context, params Params) (Page, error)
	Get(ctx context.Context, id any, params Params) (Record, error)
	Create(ctx context.Context, data Record, params Params) (Record, error)
	Update(ctx context.Context, id any, data Record, params Params) (Record, error)
	Patch(ctx context.Context, id any, data Record, params Params) (Record, error)
	Remove(ctx context.Context, id any, params Params) (Record, error)

	Events
}

// Resolver looks up the service mounted on a route. It returns nil when no
// service is mounted there.
type Resolver interface {
	Service(route string) Service
}
