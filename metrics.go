package safely

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation names used as the "op" label value.
const (
	opSafe              = "safe"
	opSafeAsync         = "safe_async"
	opSafeAll           = "safe_all"
	opSafeObservable    = "safe_observable"
	opSafeObservableAll = "safe_observable_all"
	opSafeWithRetries   = "safe_with_retries"
)

// Metrics holds the Prometheus collectors an [Executor] updates when it is
// configured with [WithMetrics]. One Metrics may be shared by several
// executors.
type Metrics struct {
	failures *prometheus.CounterVec
	attempts *prometheus.CounterVec
	timeouts prometheus.Counter
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors under namespace and registers them with
// reg. A nil reg uses [prometheus.DefaultRegisterer].
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Total number of normalized failures, by operation",
			},
			[]string{"op"},
		),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retry_attempts_total",
				Help:      "Total number of SafeWithRetries attempts, by outcome",
			},
			[]string{"outcome"},
		),
		timeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "timeouts_total",
				Help:      "Total number of attempts that lost a deadline race",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Wall-clock duration of guarded operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}

	var err error
	if m.failures, err = register(reg, m.failures); err != nil {
		return nil, err
	}
	if m.attempts, err = register(reg, m.attempts); err != nil {
		return nil, err
	}
	if m.timeouts, err = register(reg, m.timeouts); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, reusing the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// The methods below are nil-safe so the executor can call them
// unconditionally.

func (m *Metrics) failure(op string, err error) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(op).Inc()
	if IsTimeout(err) {
		m.timeouts.Inc()
	}
}

func (m *Metrics) attempt(ok bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.attempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observe(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}
