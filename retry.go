package safely

import (
	"context"
	"time"
)

// RetryOptions configures [Ops.SafeWithRetries].
type RetryOptions struct {
	// Retries is the number of retries after the first attempt. Total
	// attempts = Retries + 1; zero means a single attempt.
	Retries int

	// InitialDelay is the backoff base. Zero means [DefaultInitialDelay].
	InitialDelay time.Duration

	// Jitter replaces each delay with a uniformly random value in
	// [0, delay).
	Jitter bool

	// Timeout bounds each attempt with [RaceTimeout]. Zero disables it;
	// otherwise it must be at least one millisecond.
	Timeout time.Duration
}

func (o RetryOptions) initialDelay() time.Duration {
	if o.InitialDelay == 0 {
		return DefaultInitialDelay
	}
	return o.InitialDelay
}

func (o RetryOptions) validate() {
	if o.Retries < 0 {
		panic("safely: RetryOptions.Retries must be non-negative")
	}
	if o.InitialDelay < 0 {
		panic("safely: RetryOptions.InitialDelay must be non-negative")
	}
	if o.Timeout < 0 {
		panic("safely: RetryOptions.Timeout must be non-negative")
	}
	if o.Timeout > 0 && o.Timeout < time.Millisecond {
		panic("safely: RetryOptions.Timeout must be zero or at least 1ms")
	}
}

// SafeWithRetries calls fn up to opts.Retries+1 times, one attempt at a
// time, and returns the first success. Each attempt calls fn afresh; with
// opts.Timeout set, that call is raced against its own timer. Every failed
// attempt is logged. Between attempts it sleeps [CalculateDelay] for the
// attempt that just failed.
//
// When all attempts fail, the last attempt's error is returned. Once ctx
// has ended no further attempt starts: an attempt cut short by ctx, or an
// interrupted backoff sleep, returns the context error.
//
// SafeWithRetries panics if fn is nil, opts holds negative values, or
// opts.Timeout is below one millisecond but not zero.
/* Example:
	r := safely.For[*User](exec).SafeWithRetries(ctx, fetchUser, safely.RetryOptions{
		Retries: 3,
		Jitter:  true,
		Timeout: 2 * time.Second,
	})
*/
func (o Ops[T]) SafeWithRetries(ctx context.Context, fn func(context.Context) (T, error), opts RetryOptions) Result[T] {
	if fn == nil {
		panic("safely: SafeWithRetries requires non-nil fn")
	}
	opts.validate()

	cfg := o.e.cfg
	start := cfg.clock.Now()
	defer func() { cfg.metrics.observe(opSafeWithRetries, cfg.clock.Now().Sub(start)) }()

	var lastErr error
	for attempt := 0; ; attempt++ {
		f := Go(ctx, fn)
		if opts.Timeout > 0 {
			f = RaceTimeout(f, opts.Timeout)
		}

		v, err := f.Await(ctx)
		if err == nil {
			cfg.metrics.attempt(true)
			return Ok(v)
		}
		cfg.metrics.attempt(false)

		err = NormalizeError(err)
		o.e.fail(opSafeWithRetries, err)
		lastErr = err

		if attempt >= opts.Retries || ctx.Err() != nil {
			return Fail[T](lastErr)
		}

		delay := CalculateDelay(attempt, opts)
		if cfg.onRetry != nil {
			cfg.onRetry(attempt, lastErr, delay)
		}
		if err := cfg.clock.Sleep(ctx, delay); err != nil {
			err = NormalizeError(err)
			o.e.fail(opSafeWithRetries, err)
			return Fail[T](err)
		}
	}
}
