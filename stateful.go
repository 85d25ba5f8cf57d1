package drift

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Uniq drops any input value equal to the value delivered just before it.
// The first value always passes.
//
// A completed input equal to the previous value closes the output
// without a repeat; the output's head already holds that value.
func Uniq[T comparable](s *Events[T]) *Events[T] {
	return pipeFrom(s, "uniq", nil, func(out *Events[T]) func(Box[T]) bool {
		var prev T
		seen := false

		return func(b Box[T]) bool {
			if seen && b.val == prev {
				return true
			}
			prev, seen = b.val, true
			return out.send(b)
		}
	})
}

// Cycle steps through values, repeating, once per input event.
// The output's head starts at values[0];
// the first input event emits values[1 % len(values)], and so on.
// Cycle panics if values is empty.
func Cycle[T, U any](values []U, s *Events[T]) *Events[U] {
	if len(values) == 0 {
		panic(errors.New("BUG: Cycle requires at least one value"))
	}
	values = slices.Clone(values)

	head := Boxed(values[0])
	return pipeFrom(s, "cycle", &head, func(out *Events[U]) func(Box[T]) bool {
		i := 0

		return func(b Box[T]) bool {
			i = (i + 1) % len(values)
			return out.send(rebox(b, values[i]))
		}
	})
}

// Throttle drops any input value arriving less than d
// after the previously delivered one.
// A completed input is always delivered.
// Throttle panics if d is negative.
func Throttle[T any](d time.Duration, s *Events[T]) *Events[T] {
	if d < 0 {
		panic(fmt.Errorf("BUG: Throttle duration must not be negative, got %s", d))
	}

	return pipeFrom(s, "throttle", nil, func(out *Events[T]) func(Box[T]) bool {
		var last time.Time

		return func(b Box[T]) bool {
			now := time.Now()
			if !b.done && !last.IsZero() && now.Sub(last) < d {
				return true
			}
			last = now
			return out.send(b)
		}
	})
}

// Delay forwards every input value after waiting d.
// Values are delayed one at a time, so their order is kept.
// Delay panics if d is negative.
func Delay[T any](d time.Duration, s *Events[T]) *Events[T] {
	if d < 0 {
		panic(fmt.Errorf("BUG: Delay duration must not be negative, got %s", d))
	}

	return pipeFrom(s, "delay", nil, func(out *Events[T]) func(Box[T]) bool {
		return func(b Box[T]) bool {
			timer := time.NewTimer(d)
			defer timer.Stop()

			select {
			case <-timer.C:
				return out.send(b)
			case <-out.disposing:
				return false
			}
		}
	})
}

// Sample pushes the result of read every period,
// until the returned stream is disposed.
// Sample panics if period is not positive.
func Sample[T any](period time.Duration, read func() T, opts ...Option) *Events[T] {
	if period <= 0 {
		panic(fmt.Errorf("BUG: Sample period must be positive, got %s", period))
	}
	if read == nil {
		panic(errors.New("BUG: Sample requires a read function"))
	}

	o := buildOptions(opts)
	out := derive[T](o.log, "sample", nil)
	out.onDispose = o.dispose

	go func() {
		defer out.terminate()

		t := time.NewTicker(period)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				if !out.send(Boxed(read())) {
					return
				}
			case <-out.disposing:
				out.log.Debug("Stage stopping due to disposal")
				return
			}
		}
	}()

	return out
}
