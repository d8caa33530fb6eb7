package safely

import (
	"time"
)

// RaceTimeout races f against a timer of d. The returned future settles
// with f's outcome if f settles first, and with a [*TimeoutError] ("Timeout
// after {d}ms") if the timer fires first.
//
// f is not cancelled when it loses. It keeps running and its eventual
// outcome is discarded. The timer is stopped as soon as f settles, so
// nothing started by RaceTimeout outlives the race.
//
// The timeout message uses whole milliseconds, so a d below one
// millisecond reports as "Timeout after 0ms".
//
// RaceTimeout panics if f is nil or d <= 0.
func RaceTimeout[T any](f *Future[T], d time.Duration) *Future[T] {
	if f == nil {
		panic("safely: RaceTimeout requires non-nil future")
	}
	if d <= 0 {
		panic("safely: RaceTimeout requires d > 0")
	}

	// Fast path: an already settled future cannot lose.
	select {
	case <-f.done:
		return f
	default:
	}

	out := newFuture[T]()
	timer := time.NewTimer(d)

	go func() {
		select {
		case <-f.done:
			timer.Stop()
			out.settle(f.val, f.err)
		case <-timer.C:
			var zero T
			out.settle(zero, &TimeoutError{After: d})
		}
	}()

	return out
}
