package safely

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "test")
	require.NoError(t, err)

	exec, _, _ := newTestExecutor(WithMetrics(m))
	ints := For[int](exec)

	ints.Safe(func() (int, error) { return 0, errors.New("a") })
	ints.Safe(func() (int, error) { panic("b") })
	ints.Safe(func() (int, error) { return 1, nil })
	ints.SafeAll(context.Background(), []*Future[int]{Reject[int](errors.New("c")), Resolve(2)})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.failures.WithLabelValues(opSafe)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(opSafeAll)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration), "one series per op observed")
}

func TestMetricsRetryAttemptsAndTimeouts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "test")
	require.NoError(t, err)

	exec, _, _ := newTestExecutor(WithMetrics(m))
	release := make(chan struct{})
	defer close(release)

	var calls atomic.Int32
	r := For[int](exec).SafeWithRetries(context.Background(), func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			<-release
		}
		return int(n), nil
	}, RetryOptions{Retries: 1, Timeout: 10 * time.Millisecond})
	require.True(t, r.IsOk())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.timeouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(opSafeWithRetries)))
}

func TestNewMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg, "shared")
	require.NoError(t, err)
	second, err := NewMetrics(reg, "shared")
	require.NoError(t, err)

	For[int](New(WithLogErrors(false), WithMetrics(first))).Safe(func() (int, error) {
		return 0, errors.New("x")
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(second.failures.WithLabelValues(opSafe)),
		"both handles point at the same series")
}

func TestMetricsGatheredNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "app")
	require.NoError(t, err)

	For[int](New(WithLogErrors(false), WithMetrics(m))).SafeWithRetries(context.Background(),
		func(ctx context.Context) (int, error) { return 0, nil }, RetryOptions{})
	For[int](New(WithLogErrors(false), WithMetrics(m))).Safe(func() (int, error) {
		return 0, errors.New("x")
	})

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.ElementsMatch(t, []string{
		"app_failures_total",
		"app_retry_attempts_total",
		"app_timeouts_total",
		"app_operation_duration_seconds",
	}, names)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.failure(opSafe, errors.New("x"))
		m.attempt(true)
		m.observe(opSafe, time.Second)
	})
}
