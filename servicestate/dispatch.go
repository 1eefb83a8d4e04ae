package servicestate

import (
	"context"
	"slices"

	"github.com/next-trace/scg-service-state/contract/action"
	"github.com/next-trace/scg-service-state/contract/service"
	"github.com/next-trace/scg-service-state/promise"
)

// DefaultDispatchNames are the creators BindDispatch binds when none are given.
// authenticate and logout only bind when a bundle registered them via Extend.
var DefaultDispatchNames = []string{
	"find", "get", "create", "update", "patch", "remove", "reset", "store", "authenticate", "logout",
}

var builtinNames = []string{"find", "get", "create", "update", "patch", "remove", "reset", "store"}

func isBuiltin(name string) bool { return slices.Contains(builtinNames, name) }

// Bound holds creators that dispatch as they are called. A nil field was not
// selected for binding.
type Bound struct {
	Find   func(ctx context.Context, params service.Params) *promise.Promise
	Get    func(ctx context.Context, id any, params service.Params) *promise.Promise
	Create func(ctx context.Context, data service.Record, params service.Params) *promise.Promise
	Update func(ctx context.Context, id any, data service.Record, params service.Params) *promise.Promise
	Patch  func(ctx context.Context, id any, data service.Record, params service.Params) *promise.Promise
	Remove func(ctx context.Context, id any, params service.Params) *promise.Promise
	Reset  func(preserveQueryResult bool) *promise.Promise
	Store  func(snapshot any) *promise.Promise

	Extensions map[string]func(ctx context.Context, args ...any) *promise.Promise
}

// BindDispatch pre-binds dispatch to the named creators of every bundle.
//
// It mutates the bundles in place, setting each bundle's Bound field, and returns
// the same map for convenience.
func BindDispatch(dispatch action.Dispatch, bundles Bundles, names ...string) Bundles {
	if len(names) == 0 {
		names = DefaultDispatchNames
	}

	for _, b := range bundles {
		b.Bound = bindBundle(dispatch, b, names)
	}

	return bundles
}

func bindBundle(dispatch action.Dispatch, b *Bundle, names []string) *Bound {
	bound := &Bound{Extensions: make(map[string]func(context.Context, ...any) *promise.Promise)}

	for _, name := range names {
		switch name {
		case "find":
			bound.Find = func(ctx context.Context, params service.Params) *promise.Promise {
				return dispatch(b.Find(ctx, params))
			}
		case "get":
			bound.Get = func(ctx context.Context, id any, params service.Params) *promise.Promise {
				return dispatch(b.Get(ctx, id, params))
			}
		case "create":
			bound.Create = func(ctx context.Context, data service.Record, params service.Params) *promise.Promise {
				return dispatch(b.Create(ctx, data, params))
			}
		case "update":
			bound.Update = func(ctx context.Context, id any, data service.Record, params service.Params) *promise.Promise {
				return dispatch(b.Update(ctx, id, data, params))
			}
		case "patch":
			bound.Patch = func(ctx context.Context, id any, data service.Record, params service.Params) *promise.Promise {
				return dispatch(b.Patch(ctx, id, data, params))
			}
		case "remove":
			bound.Remove = func(ctx context.Context, id any, params service.Params) *promise.Promise {
				return dispatch(b.Remove(ctx, id, params))
			}
		case "reset":
			bound.Reset = func(preserve bool) *promise.Promise { return dispatch(b.Reset(preserve)) }
		case "store":
			bound.Store = func(snapshot any) *promise.Promise { return dispatch(b.Store(snapshot)) }
		default:
			c, ok := b.extensions[name]
			if !ok {
				continue
			}

			bound.Extensions[name] = func(ctx context.Context, args ...any) *promise.Promise {
				return dispatch(c(ctx, args...))
			}
		}
	}

	return bound
}
