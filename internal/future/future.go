// Package future provides a small Future/Promise pair for results produced
// by a single background operation and observed by any number of callers.
package future

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Future represents the result of an asynchronous computation. Consumers
// can block for the result (Await) or register a callback that fires once
// the result is available (OnComplete).
type Future[T any] interface {
	// Await waits for the result. If ctx ends first, the context's error
	// is returned instead.
	Await(ctx context.Context) fn.Result[T]

	// OnComplete registers a function to be called when the result of the
	// future is ready. If the future is already complete, the callback is
	// invoked on a new goroutine right away. If the passed context is
	// cancelled before the future completes, the callback is invoked with
	// the context's error instead.
	OnComplete(ctx context.Context, cb func(fn.Result[T]))

	// Done returns a channel that is closed once the future completes.
	Done() <-chan struct{}
}

// Promise is the producer side of a Future. The first call to Complete wins;
// later calls are ignored.
type Promise[T any] interface {
	// Future returns the Future associated with this Promise.
	Future() Future[T]

	// Complete resolves the future with result and reports whether this
	// call was the one that resolved it.
	Complete(result fn.Result[T]) bool
}

// promise is the single implementation of both Promise and Future.
type promise[T any] struct {
	once   sync.Once
	done   chan struct{}
	result fn.Result[T]
}

// NewPromise creates a new, uncompleted promise.
func NewPromise[T any]() Promise[T] {
	return &promise[T]{
		done: make(chan struct{}),
	}
}

// Go runs f on a new goroutine and returns a Future for its outcome.
func Go[T any](ctx context.Context, f func(context.Context) (T, error)) Future[T] {
	p := NewPromise[T]()
	go func() {
		val, err := f(ctx)
		if err != nil {
			p.Complete(fn.Err[T](err))
			return
		}
		p.Complete(fn.Ok(val))
	}()

	return p.Future()
}

// Future returns the Future view of the promise.
func (p *promise[T]) Future() Future[T] {
	return p
}

// Complete sets the result if no result has been set yet.
func (p *promise[T]) Complete(result fn.Result[T]) bool {
	completed := false
	p.once.Do(func() {
		p.result = result
		close(p.done)
		completed = true
	})

	return completed
}

// Await blocks until the result is available or ctx is done.
func (p *promise[T]) Await(ctx context.Context) fn.Result[T] {
	select {
	case <-p.done:
		return p.result
	case <-ctx.Done():
		return fn.Err[T](ctx.Err())
	}
}

// OnComplete registers cb to run once the result is ready.
func (p *promise[T]) OnComplete(ctx context.Context, cb func(fn.Result[T])) {
	go func() {
		cb(p.Await(ctx))
	}()
}

// Done returns a channel closed on completion.
func (p *promise[T]) Done() <-chan struct{} {
	return p.done
}
