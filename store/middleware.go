package store

import (
	"log/slog"

	"github.com/next-trace/scg-service-state/contract/action"
	"github.com/next-trace/scg-service-state/promise"
)

// Promise resolves actions whose payload is an action.Async. It dispatches the
// pending variant synchronously, then the fulfilled or rejected variant once the
// operation settles. The returned promise settles with the operation's outcome
// after that second action has been reduced.
func Promise(suffixes action.Suffixes) Middleware {
	sx := suffixes.WithDefaults()

	return func(api API) func(next action.Dispatch) action.Dispatch {
		return func(next action.Dispatch) action.Dispatch {
			return func(a action.Action) *promise.Promise {
				async, ok := asyncPayload(a.Payload)
				if !ok {
					return next(a)
				}

				next(action.Action{Type: sx.PendingType(a.Type), Payload: async.Data})

				return async.Promise.Then(func(v any, err error) (any, error) {
					if err != nil {
						api.Dispatch(action.Action{Type: sx.RejectedType(a.Type), Payload: err, Error: true})
						return nil, err
					}

					api.Dispatch(action.Action{Type: sx.FulfilledType(a.Type), Payload: v})

					return v, nil
				})
			}
		}
	}
}

func asyncPayload(p any) (action.Async, bool) {
	switch v := p.(type) {
	case action.Async:
		return v, v.Promise != nil
	case *action.Async:
		if v == nil || v.Promise == nil {
			return action.Async{}, false
		}

		return *v, true
	default:
		return action.Async{}, false
	}
}

// Thunk runs deferred actions with the store's dispatch and state accessors.
func Thunk() Middleware {
	return func(api API) func(next action.Dispatch) action.Dispatch {
		return func(next action.Dispatch) action.Dispatch {
			return func(a action.Action) *promise.Promise {
				if !a.IsDeferred() {
					return next(a)
				}

				a.Deferred(api.Dispatch, api.GetState)

				return promise.Resolve(nil)
			}
		}
	}
}

// Logger logs every action type and the state it produced at debug level.
func Logger(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}

	return func(api API) func(next action.Dispatch) action.Dispatch {
		return func(next action.Dispatch) action.Dispatch {
			return func(a action.Action) *promise.Promise {
				l.Debug("dispatching", slog.String("type", a.Type), slog.Bool("deferred", a.IsDeferred()), slog.Bool("error", a.Error))

				p := next(a)

				l.Debug("next state", slog.String("type", a.Type), slog.Any("state", api.GetState()))

				return p
			}
		}
	}
}
