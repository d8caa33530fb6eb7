package safely

import (
	"log/slog"
	"time"
)

type config struct {
	logErrors bool
	logger    func(error)
	clock     Clock
	metrics   *Metrics
	onRetry   func(attempt int, err error, delay time.Duration)
}

// Option configures an [Executor].
type Option func(*config)

func defaultConfig() config {
	return config{
		logErrors: true,
		logger:    stderrLogger(),
		clock:     realClock{},
	}
}

// WithLogErrors enables or disables failure logging. Logging is enabled by
// default.
func WithLogErrors(enabled bool) Option {
	return func(c *config) {
		c.logErrors = enabled
	}
}

// WithLogger sets the sink that receives every failure the executor
// produces. The default writes a structured line to standard error.
//
// WithLogger panics if fn is nil.
func WithLogger(fn func(error)) Option {
	if fn == nil {
		panic("safely: WithLogger requires non-nil logger")
	}
	return func(c *config) {
		c.logger = fn
	}
}

// WithSlogLogger logs failures through l at error level.
//
// WithSlogLogger panics if l is nil.
func WithSlogLogger(l *slog.Logger) Option {
	if l == nil {
		panic("safely: WithSlogLogger requires non-nil logger")
	}
	return WithLogger(slogSink(l))
}

// WithClock sets the clock used for backoff sleeps. Useful for testing.
//
// WithClock panics if clock is nil.
func WithClock(clock Clock) Option {
	if clock == nil {
		panic("safely: WithClock requires non-nil clock")
	}
	return func(c *config) {
		c.clock = clock
	}
}

// WithMetrics records failures, retry attempts, timeouts and durations in m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithOnRetry registers a hook invoked before each backoff sleep of
// SafeWithRetries. attempt is the zero-based attempt that just failed.
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(c *config) {
		c.onRetry = fn
	}
}
