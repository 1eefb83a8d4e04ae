/*
Package promise provides an awaitable handle for a single asynchronous operation.
A Promise settles exactly once, with either a value or an error, and can be awaited
from any number of goroutines.
*/
package promise

import (
	"context"
	"fmt"
)

// Promise is the handle of one in-flight operation.
type Promise struct {
	done  chan struct{}
	value any
	err   error
}

func pending() *Promise { return &Promise{done: make(chan struct{})} }

func (p *Promise) settle(v any, err error) {
	p.value, p.err = v, err
	close(p.done)
}

// Go runs fn on its own goroutine and returns a Promise settled with its result.
// A panic inside fn rejects the promise instead of crashing the process.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) *Promise {
	p := pending()

	go func() {
		var (
			v   any
			err error
		)

		defer func() {
			if r := recover(); r != nil {
				v, err = nil, fmt.Errorf("promise: panic: %v", r)
			}

			p.settle(v, err)
		}()

		v, err = fn(ctx)
	}()

	return p
}

// Resolve returns a promise already fulfilled with v.
func Resolve(v any) *Promise {
	p := pending()
	p.settle(v, nil)

	return p
}

// Reject returns a promise already rejected with err.
func Reject(err error) *Promise {
	p := pending()
	p.settle(nil, err)

	return p
}

// Done is closed once the promise settles.
func (p *Promise) Done() <-chan struct{} { return p.done }

// Settled reports whether the promise has settled, without blocking.
func (p *Promise) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Await blocks until the promise settles or ctx is done.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Wait blocks until the promise settles.
func (p *Promise) Wait() (any, error) {
	<-p.done

	return p.value, p.err
}

// Then returns a promise settled with fn's result once p settles.
// fn always runs, for fulfilled and rejected outcomes alike.
func (p *Promise) Then(fn func(v any, err error) (any, error)) *Promise {
	return Go(context.Background(), func(context.Context) (any, error) {
		<-p.done

		return fn(p.value, p.err)
	})
}
