package safely

// Result holds the outcome of a guarded computation: either a value or an
// error, never both. Build one with [Ok] or [Fail]; the executor operations
// return them.
//
// The zero Result is a success holding the zero value of T.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result holding v.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail returns a failed Result. err is passed through [NormalizeError], so
// Fail(nil) is still a failure.
func Fail[T any](err error) Result[T] {
	if err == nil {
		return Result[T]{err: NormalizeError(nil)}
	}
	return Result[T]{err: err}
}

// Value returns the successful value, or the zero value of T on failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure, or nil on success.
func (r Result[T]) Err() error { return r.err }

// Get returns the value and error as a Go-style pair.
/* Example:
	v, err := safely.Safe(parse).Get()
	if err != nil {
		return err
	}
*/
func (r Result[T]) Get() (T, error) { return r.value, r.err }

// IsOk reports whether r is a success.
func (r Result[T]) IsOk() bool { return r.err == nil }

// ValueOr returns the value on success and def on failure.
func (r Result[T]) ValueOr(def T) T {
	if r.err != nil {
		return def
	}
	return r.value
}

// IsSuccess reports whether r's error slot is empty.
func IsSuccess[T any](r Result[T]) bool { return r.err == nil }

// IsFailure reports whether r's error slot is populated.
func IsFailure[T any](r Result[T]) bool { return r.err != nil }
