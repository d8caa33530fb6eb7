package safely

import (
	"context"
	"io"
	"sync"
)

// Stream is a pull-based view of an [Observable] subscription, for callers
// that prefer a Next loop over callbacks. Create one with
// [Observable.Stream].
//
// Note: Streams are single-consumer. Next() and other terminal methods
// must not be called concurrently.
type Stream[T any] struct {
	items <-chan T
	term  <-chan error
	stop  func()

	done bool
	err  error
	mu   sync.Mutex
}

// Stream subscribes to o and returns a [Stream] over its values. The
// producer is paused until each value is pulled. Call [Stream.Close] to
// unsubscribe early; reaching the end of the stream releases it
// automatically.
func (o *Observable[T]) Stream(ctx context.Context) *Stream[T] {
	ctx, cancel := context.WithCancel(ctx)
	items := make(chan T)
	term := make(chan error, 1)

	sub := o.Subscribe(ctx, Observer[T]{
		Next: func(v T) {
			select {
			case items <- v:
			case <-ctx.Done():
			}
		},
		Error:    func(err error) { term <- err },
		Complete: func() { term <- nil },
	})

	return &Stream[T]{
		items: items,
		term:  term,
		stop: func() {
			sub.Unsubscribe()
			cancel()
		},
	}
}

// Next returns the next value. It returns io.EOF when the observable
// completed, or the observable's error when it failed; both are sticky.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	var zero T

	s.mu.Lock()
	if s.done {
		err := s.err
		s.mu.Unlock()
		if err == nil {
			return zero, io.EOF
		}
		return zero, err
	}
	s.mu.Unlock()

	select {
	case v := <-s.items:
		return v, nil
	case err := <-s.term:
		s.finish(err)
		if err == nil {
			return zero, io.EOF
		}
		return zero, err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (s *Stream[T]) finish(err error) {
	s.mu.Lock()
	s.done = true
	s.err = err
	s.mu.Unlock()
	s.stop()
}

// Err returns the observable's terminal error, or nil if it completed or
// has not terminated yet.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close unsubscribes. Subsequent Next calls return io.EOF unless the
// stream had already failed.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
	s.stop()
}

// ToSlice collects all remaining values. On failure it returns the values
// received so far alongside the error.
func (s *Stream[T]) ToSlice(ctx context.Context) ([]T, error) {
	var items []T
	for {
		val, err := s.Next(ctx)
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, val)
	}
}

// ForEach applies fn to each value. It stops at the first error from the
// stream or from fn; in the latter case the stream is closed.
func (s *Stream[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for {
		val, err := s.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(val); err != nil {
			s.Close()
			return err
		}
	}
}

// Count consumes the stream and returns the number of values seen.
func (s *Stream[T]) Count(ctx context.Context) (int, error) {
	var count int
	for {
		_, err := s.Next(ctx)
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		count++
	}
}
