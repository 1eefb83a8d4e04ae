package servicestate

import (
	"github.com/next-trace/scg-service-state/contract/action"
	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
)

// Reducer folds a into state. Actions of other services pass through unchanged.
// It never panics and never mutates its input.
func (b *Bundle) Reducer(state State, a action.Action) State {
	e, ok := b.types.table[a.Type]
	if !ok {
		return state
	}

	switch e.kind {
	case kindLifecycle:
		return reduceLifecycle(state, e.method, e.stage, a.Payload)
	case kindReset:
		return reduceReset(state, a.Payload)
	case kindStore:
		state.Store = a.Payload
		return state
	case kindEvent:
		return b.fold(state, e.event, a.Payload)
	default:
		return state
	}
}

func reduceLifecycle(state State, m Method, st stage, payload any) State {
	switch st {
	case stagePending:
		state.IsError = nil
		state.IsLoading = m.reads()
		state.IsSaving = !m.reads()
		state.IsFinished = false

		return state.withOnlyPending(m)
	case stageFulfilled:
		state.IsError = nil
		state.IsLoading = false
		state.IsSaving = false
		state.IsFinished = true

		if m == MethodFind {
			state.QueryResult = asPage(payload)
			state.Data = nil
		} else {
			state.Data = asRecord(payload)
		}

		return state.withPending(m, false)
	case stageRejected:
		state.IsError = asServiceError(payload)
		state.IsLoading = false
		state.IsSaving = false
		state.IsFinished = true
		state.Data = nil

		if m == MethodFind {
			state.QueryResult = nil
		}

		return state.withPending(m, false)
	default:
		// the bare call type is resolved by the dispatch loop before reaching here
		return state
	}
}

func reduceReset(state State, payload any) State {
	if state.IsLoading || state.IsSaving {
		return state
	}

	next := InitialState()
	if preserve, _ := payload.(bool); preserve {
		next.QueryResult = state.QueryResult
	}

	return next
}

func asPage(v any) *service.Page {
	switch p := v.(type) {
	case *service.Page:
		return p
	case service.Page:
		return &p
	case []service.Record:
		return &service.Page{Total: len(p), Data: p}
	default:
		return nil
	}
}

func asRecord(v any) service.Record {
	switch r := v.(type) {
	case service.Record:
		return r
	case map[string]any:
		return service.Record(r)
	default:
		return nil
	}
}

func asServiceError(v any) *serr.ServiceError {
	switch e := v.(type) {
	case nil:
		return serr.General("unknown error")
	case error:
		return serr.FromError(e)
	default:
		return serr.General("%v", e)
	}
}
