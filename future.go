package safely

import (
	"context"
	"sync"
)

// Future is the eventual outcome of a computation that is already running.
// It settles exactly once, with a value or an error. Create one via [Go],
// [Resolve], [Reject], or [NewPromise].
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// settle records the outcome. Only the first call has any effect.
func (f *Future[T]) settle(v T, err error) {
	f.once.Do(func() {
		f.val = v
		f.err = err
		close(f.done)
	})
}

// Go starts fn in a new goroutine and returns a [Future] for its outcome.
// A panic inside fn rejects the future with the normalized panic value,
// and a call to runtime.Goexit inside fn rejects it with [ErrGoexit].
//
// Go panics if fn is nil.
/* Example:
	f := safely.Go(ctx, func(ctx context.Context) (int, error) {
		return fetchCount(ctx)
	})
	n, err := f.Await(ctx)
*/
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	if fn == nil {
		panic("safely: Go requires non-nil fn")
	}
	f := newFuture[T]()

	go func() {
		var zero T
		normalReturn := false
		defer func() {
			if normalReturn {
				return
			}
			if r := recover(); r != nil {
				f.settle(zero, recovered(r))
				return
			}
			f.settle(zero, ErrGoexit)
		}()
		v, err := fn(ctx)
		normalReturn = true
		f.settle(v, err)
	}()

	return f
}

// Resolve returns a future already settled with v.
func Resolve[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.settle(v, nil)
	return f
}

// Reject returns a future already settled with err. A nil err is
// normalized so the future is still a rejection.
func Reject[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	if err == nil {
		err = NormalizeError(nil)
	}
	f.settle(zero, err)
	return f
}

// NewPromise returns a pending future and the function that settles it.
// The settle function may be called from any goroutine; calls after the
// first are ignored.
func NewPromise[T any]() (*Future[T], func(T, error)) {
	f := newFuture[T]()
	return f, f.settle
}

// Done returns a channel that is closed when the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles and returns its value and error.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.val, f.err
}

// Await is like [Future.Wait] but unblocks early when ctx ends, returning
// ctx.Err(). The future itself keeps running.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
	}

	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
