package safely

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Executor carries the configuration captured by [New]: whether failures
// are logged, where they go, and the optional clock, metrics and hooks.
// It is immutable and safe for concurrent use.
//
// Go methods cannot introduce type parameters, so the operations live on
// the typed view returned by [For].
type Executor struct {
	cfg config
}

// New creates an [Executor] from the given options. Every call returns an
// independent executor; two executors never share mutable state.
func New(opts ...Option) *Executor {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Executor{cfg: cfg}
}

var defaultExecutor = New()

// Default returns the zero-configuration executor used by the
// package-level functions.
func Default() *Executor {
	return defaultExecutor
}

// Ops exposes the guarded operations of an [Executor] for values of type T.
// It is a small value; create it inline with [For].
type Ops[T any] struct {
	e *Executor
}

// For returns the operations of e for type T. A nil e selects [Default].
//
//	ints := safely.For[int](exec)
//	r := ints.Safe(func() (int, error) { return strconv.Atoi(s) })
func For[T any](e *Executor) Ops[T] {
	if e == nil {
		e = defaultExecutor
	}
	return Ops[T]{e: e}
}

// fail applies the shared failure policy: count, then log once.
func (e *Executor) fail(op string, err error) {
	e.cfg.metrics.failure(op, err)
	if e.cfg.logErrors {
		e.cfg.logger(err)
	}
}

// Safe runs fn in the calling goroutine. A returned error or a panic
// becomes a failed Result; otherwise the value is returned as a success.
//
// Safe panics if fn is nil.
func (o Ops[T]) Safe(fn func() (T, error)) (res Result[T]) {
	if fn == nil {
		panic("safely: Safe requires non-nil fn")
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := recovered(r)
			o.e.fail(opSafe, err)
			res = Fail[T](err)
		}
		o.e.cfg.metrics.observe(opSafe, time.Since(start))
	}()

	v, err := fn()
	if err != nil {
		err = NormalizeError(err)
		o.e.fail(opSafe, err)
		return Fail[T](err)
	}
	return Ok(v)
}

// SafeAsync runs fn as a [Future] and waits for it. Errors, panics, and
// ctx ending before fn settles all yield a failed Result. SafeAsync itself
// never panics on behalf of fn.
//
// SafeAsync panics if fn is nil.
func (o Ops[T]) SafeAsync(ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	if fn == nil {
		panic("safely: SafeAsync requires non-nil fn")
	}
	start := time.Now()
	defer func() { o.e.cfg.metrics.observe(opSafeAsync, time.Since(start)) }()

	return o.settle(ctx, opSafeAsync, Go(ctx, fn))
}

// SafeAll waits for every future concurrently and returns one Result per
// future, in input order. A failure never affects the other items: every
// future is awaited to settlement (or until ctx ends) and logged on its own.
//
// SafeAll panics if any element of futures is nil.
func (o Ops[T]) SafeAll(ctx context.Context, futures []*Future[T]) []Result[T] {
	checkFutures("SafeAll", futures)
	start := time.Now()
	defer func() { o.e.cfg.metrics.observe(opSafeAll, time.Since(start)) }()

	return o.settleAll(ctx, opSafeAll, futures, false)
}

// settleAll settles every future concurrently. With quietOnCancel set,
// items cut short by ctx are not reported; subscriptions use this so that
// unsubscribing records no failures.
func (o Ops[T]) settleAll(ctx context.Context, op string, futures []*Future[T], quietOnCancel bool) []Result[T] {
	results := make([]Result[T], len(futures))

	// Every goroutine returns nil, so the group never cancels a sibling.
	var g errgroup.Group
	for i, f := range futures {
		i, f := i, f
		g.Go(func() error {
			results[i] = o.settleQuiet(ctx, op, f, quietOnCancel) // safe: each goroutine writes a unique index
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// settle awaits f under ctx and converts the outcome into a Result,
// applying the failure policy.
func (o Ops[T]) settle(ctx context.Context, op string, f *Future[T]) Result[T] {
	return o.settleQuiet(ctx, op, f, false)
}

func (o Ops[T]) settleQuiet(ctx context.Context, op string, f *Future[T], quietOnCancel bool) Result[T] {
	v, err := f.Await(ctx)
	if err != nil {
		err = NormalizeError(err)
		if !quietOnCancel || ctx.Err() == nil {
			o.e.fail(op, err)
		}
		return Fail[T](err)
	}
	return Ok(v)
}

func checkFutures[T any](op string, futures []*Future[T]) {
	for i, f := range futures {
		if f == nil {
			panic(fmt.Sprintf("safely: %s future[%d] must not be nil", op, i))
		}
	}
}

// Safe runs fn with the [Default] executor. See [Ops.Safe].
func Safe[T any](fn func() (T, error)) Result[T] {
	return For[T](nil).Safe(fn)
}

// SafeAsync runs fn with the [Default] executor. See [Ops.SafeAsync].
func SafeAsync[T any](ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	return For[T](nil).SafeAsync(ctx, fn)
}

// SafeAll settles futures with the [Default] executor. See [Ops.SafeAll].
func SafeAll[T any](ctx context.Context, futures []*Future[T]) []Result[T] {
	return For[T](nil).SafeAll(ctx, futures)
}

// SafeObservable wraps fn with the [Default] executor. See [Ops.SafeObservable].
func SafeObservable[T any](fn func(context.Context) (T, error)) *Observable[T] {
	return For[T](nil).SafeObservable(fn)
}

// SafeObservableAll settles futures with the [Default] executor. See
// [Ops.SafeObservableAll].
func SafeObservableAll[T any](futures []*Future[T]) *Observable[[]Result[T]] {
	return For[T](nil).SafeObservableAll(futures)
}

// SafeWithRetries retries fn with the [Default] executor. See
// [Ops.SafeWithRetries].
func SafeWithRetries[T any](ctx context.Context, fn func(context.Context) (T, error), opts RetryOptions) Result[T] {
	return For[T](nil).SafeWithRetries(ctx, fn, opts)
}
