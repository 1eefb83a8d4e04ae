package store

import (
	"log/slog"
	"sync"

	"github.com/next-trace/scg-service-state/contract/action"
	"github.com/next-trace/scg-service-state/promise"
)

// Reducer folds an action into state. It must be pure.
type Reducer[S any] func(state S, a action.Action) S

// API is what middleware sees of the store.
type API struct {
	Dispatch action.Dispatch
	GetState action.GetState
}

// Middleware wraps dispatch. Middlewares run in registration order.
type Middleware func(api API) func(next action.Dispatch) action.Dispatch

// Option configures a Store.
type Option func(*options)

type options struct {
	middleware []Middleware
	logger     *slog.Logger
}

// WithMiddleware appends middleware to the chain.
func WithMiddleware(mw ...Middleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mw...) }
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Store holds one state tree. Reductions are serialized; listeners run after
// the state lock is released and may dispatch.
//
// Store is concurrency-safe and contains no global state.
type Store[S any] struct {
	mu      sync.RWMutex
	state   S
	reducer Reducer[S]

	dispatch action.Dispatch
	logger   *slog.Logger

	lmu       sync.Mutex
	listeners map[int]func()
	nextID    int
}

// New builds a store starting at initial.
func New[S any](reducer Reducer[S], initial S, opts ...Option) *Store[S] {
	var o options
	for _, f := range opts {
		f(&o)
	}

	s := &Store[S]{
		state:     initial,
		reducer:   reducer,
		logger:    o.logger,
		listeners: make(map[int]func()),
	}

	api := API{
		Dispatch: func(a action.Action) *promise.Promise { return s.dispatch(a) },
		GetState: func() any { return s.State() },
	}

	// Build chain so the first registered middleware runs first
	final := s.reduce
	for i := len(o.middleware) - 1; i >= 0; i-- {
		final = o.middleware[i](api)(final)
	}

	s.dispatch = final

	return s
}

// Dispatch sends a through the middleware chain.
func (s *Store[S]) Dispatch(a action.Action) *promise.Promise { return s.dispatch(a) }

// State returns the current state.
func (s *Store[S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Subscribe registers fn to run after every reduction. The returned func removes it.
func (s *Store[S]) Subscribe(fn func()) func() {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store[S]) reduce(a action.Action) *promise.Promise {
	if a.IsDeferred() {
		if s.logger != nil {
			s.logger.Warn("deferred action reached the reducer; register the thunk middleware", slog.String("type", a.Type))
		}

		return promise.Resolve(nil)
	}

	s.mu.Lock()
	s.state = s.reducer(s.state, a)
	s.mu.Unlock()

	s.notify()

	return promise.Resolve(a)
}

func (s *Store[S]) notify() {
	s.lmu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
