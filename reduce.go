package drift

import (
	"errors"
	"fmt"
	"slices"
)

// Reduce emits a running accumulation of the input values.
// The first input value becomes the accumulator as is;
// each later value x produces f(acc, x).
// The accumulator is emitted after every input.
func Reduce[T any](f func(acc, v T) T, s *Events[T]) *Events[T] {
	if f == nil {
		panic(errors.New("BUG: Reduce requires a reducing function"))
	}

	return pipeFrom(s, "reduce", nil, func(out *Events[T]) func(Box[T]) bool {
		var acc T
		first := true

		return func(b Box[T]) bool {
			if first {
				acc = b.val
				first = false
			} else {
				acc = f(acc, b.val)
			}
			return out.send(rebox(b, acc))
		}
	})
}

// ReduceInit is like [Reduce] with an initial accumulator.
// The output's head starts as init,
// and every input value x produces f(acc, x).
func ReduceInit[T, A any](f func(acc A, v T) A, init A, s *Events[T]) *Events[A] {
	if f == nil {
		panic(errors.New("BUG: ReduceInit requires a reducing function"))
	}

	return reduceInit("reduce", f, init, s)
}

func reduceInit[T, A any](stage string, f func(A, T) A, init A, s *Events[T]) *Events[A] {
	head := Boxed(init)
	return pipeFrom(s, stage, &head, func(out *Events[A]) func(Box[T]) bool {
		acc := init

		return func(b Box[T]) bool {
			acc = f(acc, b.val)
			return out.send(rebox(b, acc))
		}
	})
}

// Cons emits the input values, with v as the output's initial head.
func Cons[T any](v T, s *Events[T]) *Events[T] {
	return reduceInit("cons", func(_, x T) T { return x }, v, s)
}

// Count emits the number of input values seen so far,
// starting from a head of zero.
func Count[T any](s *Events[T]) *Events[int] {
	return reduceInit("count", func(n int, _ T) int { return n + 1 }, 0, s)
}

// Accum applies each input function to the accumulator,
// starting from init, and emits the result.
func Accum[T any](init T, s *Events[func(T) T]) *Events[T] {
	return reduceInit("accum", func(acc T, f func(T) T) T { return f(acc) }, init, s)
}

// Buffer emits every input value seen so far, oldest first.
// The output's head starts as an empty slice.
func Buffer[T any](s *Events[T]) *Events[[]T] {
	return buffer(0, s)
}

// BufferN emits the last n input values, oldest first.
// BufferN panics if n is not positive.
func BufferN[T any](n int, s *Events[T]) *Events[[]T] {
	if n <= 0 {
		panic(fmt.Errorf("BUG: BufferN size must be positive, got %d", n))
	}
	return buffer(n, s)
}

// buffer keeps at most n values, or all of them if n is zero.
// Every emitted slice is a fresh copy, so consumers may keep them.
func buffer[T any](n int, s *Events[T]) *Events[[]T] {
	return reduceInit("buffer", func(q []T, v T) []T {
		q = append(slices.Clone(q), v)
		if n > 0 && len(q) > n {
			q = q[len(q)-n:]
		}
		return q
	}, []T{}, s)
}
