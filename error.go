package safely

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// ErrTimeout is matched by every [*TimeoutError] via [errors.Is].
var ErrTimeout = errors.New("safely: timeout")

// ErrGoexit rejects work whose goroutine ended through runtime.Goexit
// (t.FailNow, for instance) instead of returning or panicking.
var ErrGoexit = errors.New("safely: goroutine exited without returning")

// Error is the normalized form of a failure value that was not already an
// error: a non-error panic value, or a non-error value passed to
// [NormalizeError].
type Error struct {
	// Value is the original value that was thrown or passed in.
	Value any

	// Stack is the goroutine stack trace captured when Value was recovered
	// from a panic. It is empty for values normalized outside a recover.
	Stack string

	msg string
}

// Error returns the string form of Value.
func (e *Error) Error() string { return e.msg }

// Unwrap returns nil. Error does not wrap another error.
func (e *Error) Unwrap() error { return nil }

// NormalizeError coerces any value into an error.
//
// A value that already implements error is returned unchanged, so identity
// comparisons and errors.Is keep working. Any other value, nil included, is
// wrapped in a new [*Error] whose message is fmt.Sprint(v). NormalizeError
// never returns nil.
func NormalizeError(v any) error {
	if err, ok := v.(error); ok && err != nil {
		return err
	}
	return &Error{Value: v, msg: fmt.Sprint(v)}
}

// recovered normalizes a value obtained from recover(). Non-error values
// also carry the stack of the panicking goroutine.
func recovered(r any) error {
	if err, ok := r.(error); ok && err != nil {
		return err
	}

	// 8 KiB is enough for most stack traces. runtime.Stack truncates
	// gracefully if the buffer is too small.
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &Error{
		Value: r,
		Stack: string(buf[:n]),
		msg:   fmt.Sprint(r),
	}
}

// TimeoutError is produced by [RaceTimeout] when the timer fires before the
// raced future settles.
type TimeoutError struct {
	After time.Duration
}

// Error reports the deadline in whole milliseconds. RetryOptions.Timeout
// rejects sub-millisecond values; a sub-millisecond d passed directly to
// [RaceTimeout] reports as 0ms.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Timeout after %dms", e.After.Milliseconds())
}

// Is reports whether target is [ErrTimeout].
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// Timeout reports true, satisfying the net.Error style timeout check.
func (e *TimeoutError) Timeout() bool { return true }

// IsTimeout reports whether err (or any error in its chain) is a [*TimeoutError].
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	return errors.As(err, &te)
}

// ValueOf extracts the original value from the first [*Error] in err's
// chain. Returns false if no Error is found.
func ValueOf(err error) (any, bool) {
	if err == nil {
		return nil, false
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Value, true
	}
	return nil, false
}
