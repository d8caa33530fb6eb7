package safely

import (
	"context"
	"sync"
)

// Observer receives the signals of one subscription. Any callback may be
// nil. Signals are serialized: Next is called zero or more times, then at
// most one of Error or Complete, and nothing after that.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// Sink is the producer side of a subscription.
type Sink[T any] interface {
	// Next delivers v. It returns false when the subscription no longer
	// accepts values (terminated or unsubscribed); producers should stop.
	Next(v T) bool

	// Error terminates the subscription with err.
	Error(err error)

	// Complete terminates the subscription successfully.
	Complete()
}

// Observable is a cold, lazily started push stream. Nothing runs until
// [Observable.Subscribe] is called, and every subscription runs the
// producer again.
type Observable[T any] struct {
	produce func(ctx context.Context, sink Sink[T])
}

// NewObservable creates an [Observable] from a producer. The producer runs
// in its own goroutine per subscription and receives a context that ends on
// [Subscription.Unsubscribe]. If it returns without a terminal signal the
// subscription completes; if it panics the subscription errors with the
// normalized panic value, and if it calls runtime.Goexit with [ErrGoexit].
//
// NewObservable panics if produce is nil.
func NewObservable[T any](produce func(ctx context.Context, sink Sink[T])) *Observable[T] {
	if produce == nil {
		panic("safely: NewObservable requires non-nil producer")
	}
	return &Observable[T]{produce: produce}
}

// Just returns an [Observable] that emits v once and completes.
func Just[T any](v T) *Observable[T] {
	return NewObservable(func(_ context.Context, sink Sink[T]) {
		if sink.Next(v) {
			sink.Complete()
		}
	})
}

// Throw returns an [Observable] that terminates with err without emitting.
func Throw[T any](err error) *Observable[T] {
	err = NormalizeError(err)
	return NewObservable(func(_ context.Context, sink Sink[T]) {
		sink.Error(err)
	})
}

// Subscription is a handle on a running subscription.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Unsubscribe stops delivery. After it returns the observer receives no
// further signals. It is safe to call more than once and from inside an
// observer callback.
func (s *Subscription) Unsubscribe() {
	s.cancel()
}

// Done returns a channel that is closed once the producer has returned.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

type sink[T any] struct {
	ctx  context.Context
	obs  Observer[T]
	mu   sync.Mutex
	term bool
}

func (s *sink[T]) Next(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.term || s.ctx.Err() != nil {
		return false
	}
	if s.obs.Next != nil {
		s.obs.Next(v)
	}
	return s.ctx.Err() == nil
}

func (s *sink[T]) Error(err error) {
	s.terminate(func() {
		if s.obs.Error != nil {
			s.obs.Error(NormalizeError(err))
		}
	})
}

func (s *sink[T]) Complete() {
	s.terminate(func() {
		if s.obs.Complete != nil {
			s.obs.Complete()
		}
	})
}

func (s *sink[T]) terminate(signal func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.term || s.ctx.Err() != nil {
		return
	}
	s.term = true
	signal()
}

// Subscribe starts the producer for obs. Ending ctx has the same effect as
// [Subscription.Unsubscribe]: delivery stops silently.
func (o *Observable[T]) Subscribe(ctx context.Context, obs Observer[T]) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &sink[T]{ctx: ctx, obs: obs}
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		normalReturn := false
		defer close(sub.done)
		defer cancel()
		defer func() {
			if normalReturn {
				s.Complete()
				return
			}
			if r := recover(); r != nil {
				s.Error(recovered(r))
				return
			}
			s.Error(ErrGoexit)
		}()

		o.produce(ctx, s)
		normalReturn = true
	}()

	return sub
}

// Collect subscribes, waits for termination, and returns the emitted
// values with the terminal error (nil on completion). If ctx ends first it
// unsubscribes and returns the values received so far with ctx.Err().
func (o *Observable[T]) Collect(ctx context.Context) ([]T, error) {
	var (
		mu    sync.Mutex
		items []T
		err   error
	)
	term := make(chan struct{})

	sub := o.Subscribe(ctx, Observer[T]{
		Next: func(v T) {
			mu.Lock()
			items = append(items, v)
			mu.Unlock()
		},
		Error: func(e error) {
			mu.Lock()
			err = e
			mu.Unlock()
			close(term)
		},
		Complete: func() { close(term) },
	})

	select {
	case <-term:
	case <-ctx.Done():
		sub.Unsubscribe()
		mu.Lock()
		defer mu.Unlock()
		return append([]T(nil), items...), ctx.Err()
	}

	mu.Lock()
	defer mu.Unlock()
	return items, err
}

// SafeObservable returns an [Observable] that calls fn once per
// subscription. A value is emitted and followed by completion. An error or
// a panic is normalized, logged, and delivered as the stream's error with
// no value emitted. A failure that happens after the subscription ended is
// neither logged nor delivered.
//
// SafeObservable panics if fn is nil.
func (o Ops[T]) SafeObservable(fn func(context.Context) (T, error)) *Observable[T] {
	if fn == nil {
		panic("safely: SafeObservable requires non-nil fn")
	}
	return NewObservable(func(ctx context.Context, sink Sink[T]) {
		v, err := call(ctx, fn)
		if err != nil {
			if ctx.Err() != nil {
				// Unsubscribed: nothing will be emitted, so nothing is logged.
				return
			}
			err = NormalizeError(err)
			o.e.fail(opSafeObservable, err)
			sink.Error(err)
			return
		}
		if sink.Next(v) {
			sink.Complete()
		}
	})
}

// SafeObservableAll returns an [Observable] that, per subscription, settles
// every future like [Ops.SafeAll] and emits the ordered results as a single
// value before completing. Item failures are carried inside the results;
// the stream never errors because of them. Items cut short by the end of
// the subscription are not logged.
//
// SafeObservableAll panics if any element of futures is nil.
func (o Ops[T]) SafeObservableAll(futures []*Future[T]) *Observable[[]Result[T]] {
	checkFutures("SafeObservableAll", futures)
	return NewObservable(func(ctx context.Context, sink Sink[[]Result[T]]) {
		results := o.settleAll(ctx, opSafeObservableAll, futures, true)
		if ctx.Err() != nil {
			return
		}
		if sink.Next(results) {
			sink.Complete()
		}
	})
}

// call runs fn in the calling goroutine, converting a panic into an error.
func call[T any](ctx context.Context, fn func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return fn(ctx)
}
