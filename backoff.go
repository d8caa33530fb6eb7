package safely

import (
	"math"
	"math/rand"
	"time"
)

// DefaultInitialDelay is the backoff base used when
// [RetryOptions.InitialDelay] is zero.
const DefaultInitialDelay = 100 * time.Millisecond

const maxShift = 62

// CalculateDelay returns the wait before the attempt that follows the
// zero-based attempt that just failed.
//
//	base = InitialDelay * 2^attempt
//
// With Jitter set the result is uniformly random in [0, base); otherwise it
// is exactly base. Negative attempts are treated as 0 and the product is
// clamped instead of overflowing.
func CalculateDelay(attempt int, opts RetryOptions) time.Duration {
	base := exponential(opts.initialDelay(), attempt)
	if !opts.Jitter {
		return base
	}
	if base <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(base)))
}

func exponential(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	} else if attempt > maxShift {
		attempt = maxShift
	}

	multiplier := int64(1) << uint(attempt)
	if int64(base) > math.MaxInt64/multiplier {
		return time.Duration(math.MaxInt64)
	}
	return base * time.Duration(multiplier)
}
