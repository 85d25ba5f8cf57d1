package drift

import (
	"context"
	"time"
)

// Await returns the stream's head if it has one.
// Otherwise it blocks until the next value is delivered,
// the stream closes, or ctx is done.
//
// If the stream closes without ever holding a value,
// Await returns [ErrClosed].
// If ctx finishes first, Await returns [context.Cause] of ctx.
func (e *Events[T]) Await(ctx context.Context) (T, error) {
	if v, ok := e.Read(); ok {
		return v, nil
	}

	// Buffered so the broadcaster is never held up by this listener,
	// between our last receive and the detach.
	ch := make(chan Box[T], 1)
	e.bc.Attach(ch, true)
	defer e.bc.Detach(ch)

	select {
	case b, ok := <-ch:
		if ok {
			return b.val, nil
		}

		if v, ok := e.Read(); ok {
			return v, nil
		}

		var zero T
		return zero, ErrClosed

	case <-ctx.Done():
		var zero T
		return zero, context.Cause(ctx)
	}
}

// ReadTimeout is like [*Events.Await] with a deadline of timeout.
// It returns fallback once timeout elapses without a value,
// or as soon as the stream closes without ever holding one.
func (e *Events[T]) ReadTimeout(timeout time.Duration, fallback T) T {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	v, err := e.Await(ctx)
	if err != nil {
		return fallback
	}
	return v
}
