package servicestate

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/next-trace/scg-service-state/contract/action"
	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
	"github.com/next-trace/scg-service-state/promise"
)

// Bundle is everything bound for one remote service: action creators, the
// synthesized action types and the reducer.
type Bundle struct {
	Name  string
	Route string

	// Bound holds creators pre-bound to a dispatch function. It is nil until
	// BindDispatch sets it.
	Bound *Bound

	svc        service.Service
	cfg        Config
	types      actionTypes
	extensions map[string]Creator
}

// Creator is an extension action creator, e.g. authenticate or logout.
type Creator func(ctx context.Context, args ...any) action.Action

// EventHandler handles a real-time event inside a deferred action.
type EventHandler func(event string, data any, dispatch action.Dispatch, getState action.GetState)

// EventPayload wraps the record carried by an event action.
type EventPayload struct {
	Data service.Record
}

// Bind binds the service mounted on route under name. An empty name defaults to
// the route. Binding fails when no service is mounted on route or cfg is invalid;
// no bundle is returned in that case.
func Bind(r service.Resolver, route, name string, cfg Config) (*Bundle, error) {
	if strings.TrimSpace(route) == "" {
		return nil, fmt.Errorf("bind %q: %w", route, serr.ErrInvalidRoute)
	}

	if name == "" {
		name = route
	}

	var svc service.Service
	if r != nil {
		svc = r.Service(route)
	}

	if svc == nil {
		return nil, fmt.Errorf("bind %s: %w", route, serr.ErrServiceNotFound)
	}

	resolved, err := cfg.resolve()
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", route, err)
	}

	b := &Bundle{
		Name:       name,
		Route:      route,
		svc:        svc,
		cfg:        resolved,
		types:      newActionTypes(name, resolved.Suffixes),
		extensions: make(map[string]Creator),
	}

	if resolved.Logger != nil {
		resolved.Logger.Debug("service bound", slog.String("route", route), slog.String("name", name))
	}

	return b, nil
}

// Service returns the bound remote service.
func (b *Bundle) Service() service.Service { return b.svc }

// Types maps every synthesized action type to itself.
func (b *Bundle) Types() map[string]string {
	out := make(map[string]string, len(b.types.table))
	for t := range b.types.table {
		out[t] = t
	}

	return out
}

// Type returns the base action type of m.
func (b *Bundle) Type(m Method) string { return b.types.call[m] }

// OnType returns the action type of the named real-time event.
func (b *Bundle) OnType(event string) string { return b.types.onType(event) }

// InitialState returns the state the reducer starts from.
func (b *Bundle) InitialState() State { return InitialState() }

// Extend registers an extension creator under name. Built-in creator names are reserved.
func (b *Bundle) Extend(name string, c Creator) error {
	if isBuiltin(name) {
		return fmt.Errorf("extend %s with %q: %w", b.Name, name, serr.ErrDuplicateName)
	}

	b.extensions[name] = c

	return nil
}

// Extensions returns a copy of the registered extension creators.
func (b *Bundle) Extensions() map[string]Creator { return maps.Clone(b.extensions) }

func (b *Bundle) call(ctx context.Context, m Method, fn func(ctx context.Context) (any, error)) action.Action {
	return action.Action{
		Type:    b.types.call[m],
		Payload: action.Async{Promise: promise.Go(ctx, fn)},
	}
}

// Find queries the service. The payload's Data is left empty for middleware that
// wants to tell find apart.
func (b *Bundle) Find(ctx context.Context, params service.Params) action.Action {
	return b.call(ctx, MethodFind, func(ctx context.Context) (any, error) {
		return b.svc.Find(ctx, params)
	})
}

// Get fetches one record.
func (b *Bundle) Get(ctx context.Context, id any, params service.Params) action.Action {
	return b.call(ctx, MethodGet, func(ctx context.Context) (any, error) {
		return b.svc.Get(ctx, id, params)
	})
}

// Create creates a record.
func (b *Bundle) Create(ctx context.Context, data service.Record, params service.Params) action.Action {
	return b.call(ctx, MethodCreate, func(ctx context.Context) (any, error) {
		return b.svc.Create(ctx, data, params)
	})
}

// Update replaces a record.
func (b *Bundle) Update(ctx context.Context, id any, data service.Record, params service.Params) action.Action {
	return b.call(ctx, MethodUpdate, func(ctx context.Context) (any, error) {
		return b.svc.Update(ctx, id, data, params)
	})
}

// Patch merges data into a record.
func (b *Bundle) Patch(ctx context.Context, id any, data service.Record, params service.Params) action.Action {
	return b.call(ctx, MethodPatch, func(ctx context.Context) (any, error) {
		return b.svc.Patch(ctx, id, data, params)
	})
}

// Remove deletes a record.
func (b *Bundle) Remove(ctx context.Context, id any, params service.Params) action.Action {
	return b.call(ctx, MethodRemove, func(ctx context.Context) (any, error) {
		return b.svc.Remove(ctx, id, params)
	})
}

// Reset returns the state to its defaults. The reducer ignores it while a call
// is loading or saving. queryResult survives when preserveQueryResult is true.
func (b *Bundle) Reset(preserveQueryResult bool) action.Action {
	return action.Action{Type: b.types.reset, Payload: preserveQueryResult}
}

// Store overwrites the store field with snapshot.
func (b *Bundle) Store(snapshot any) action.Action {
	return action.Action{Type: b.types.store, Payload: snapshot}
}

// On returns a deferred action that hands the event to handler once the
// dispatch loop runs it. It dispatches nothing by itself.
func (b *Bundle) On(event string, data any, handler EventHandler) action.Action {
	return action.Action{
		Type:    b.types.onType(event),
		Payload: data,
		Deferred: func(dispatch action.Dispatch, getState action.GetState) {
			handler(event, data, dispatch, getState)
		},
	}
}

// OnCreated folds a created record into the cached query result.
func (b *Bundle) OnCreated(r service.Record) action.Action { return b.event(service.Created, r) }

// OnUpdated replaces the matching cached record.
func (b *Bundle) OnUpdated(r service.Record) action.Action { return b.event(service.Updated, r) }

// OnPatched replaces the matching cached record.
func (b *Bundle) OnPatched(r service.Record) action.Action { return b.event(service.Patched, r) }

// OnRemoved drops the matching cached record.
func (b *Bundle) OnRemoved(r service.Record) action.Action { return b.event(service.Removed, r) }

// OnEvent dispatches to the event creator matching name. Unknown names yield false.
func (b *Bundle) OnEvent(name service.EventName, r service.Record) (action.Action, bool) {
	if _, ok := b.types.on[name]; !ok {
		return action.Action{}, false
	}

	return b.event(name, r), true
}

func (b *Bundle) event(name service.EventName, r service.Record) action.Action {
	return action.Action{Type: b.types.on[name], Payload: EventPayload{Data: r}}
}
