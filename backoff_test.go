package safely

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDelayExponential(t *testing.T) {
	opts := RetryOptions{}

	cases := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 100 * time.Millisecond}, // 100 * 2^0
		{1, 200 * time.Millisecond}, // 100 * 2^1
		{2, 400 * time.Millisecond}, // 100 * 2^2
		{5, 3200 * time.Millisecond},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, CalculateDelay(tc.attempt, opts), "attempt %d", tc.attempt)
	}
}

func TestCalculateDelayCustomBase(t *testing.T) {
	opts := RetryOptions{InitialDelay: 10 * time.Millisecond}
	assert.Equal(t, 10*time.Millisecond, CalculateDelay(0, opts))
	assert.Equal(t, 80*time.Millisecond, CalculateDelay(3, opts))
}

func TestCalculateDelayNegativeAttempt(t *testing.T) {
	assert.Equal(t, DefaultInitialDelay, CalculateDelay(-3, RetryOptions{}))
}

func TestCalculateDelayOverflow(t *testing.T) {
	d := CalculateDelay(100, RetryOptions{InitialDelay: time.Hour})
	assert.Equal(t, time.Duration(math.MaxInt64), d)
}

func TestCalculateDelayJitterBounds(t *testing.T) {
	opts := RetryOptions{InitialDelay: 50 * time.Millisecond, Jitter: true}

	for attempt := 0; attempt < 4; attempt++ {
		base := CalculateDelay(attempt, RetryOptions{InitialDelay: opts.InitialDelay})
		for i := 0; i < 500; i++ {
			d := CalculateDelay(attempt, opts)
			assert.GreaterOrEqual(t, d, time.Duration(0))
			assert.Less(t, d, base)
		}
	}
}
