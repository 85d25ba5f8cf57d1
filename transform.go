package drift

import "errors"

// Mapcat emits, for each input value, the values returned by f, in order.
// When s completes with x, the last value of f(x) completes the output;
// if f(x) is empty the output closes without a final value.
func Mapcat[T, U any](f func(T) []U, s *Events[T]) *Events[U] {
	if f == nil {
		panic(errors.New("BUG: Mapcat requires a function"))
	}

	return mapcat("mapcat", f, s)
}

func mapcat[T, U any](stage string, f func(T) []U, s *Events[T]) *Events[U] {
	return pipeFrom(s, stage, nil, func(out *Events[U]) func(Box[T]) bool {
		return func(b Box[T]) bool {
			return out.emit(f(b.val), b.done)
		}
	})
}

// Map emits f(x) for each input value x.
func Map[T, U any](f func(T) U, s *Events[T]) *Events[U] {
	if f == nil {
		panic(errors.New("BUG: Map requires a function"))
	}

	return mapcat("map", func(v T) []U { return []U{f(v)} }, s)
}

// Filter emits the input values for which pred returns true.
func Filter[T any](pred func(T) bool, s *Events[T]) *Events[T] {
	if pred == nil {
		panic(errors.New("BUG: Filter requires a predicate"))
	}

	return mapcat("filter", func(v T) []T {
		if pred(v) {
			return []T{v}
		}
		return nil
	}, s)
}

// Remove emits the input values for which pred returns false.
func Remove[T any](pred func(T) bool, s *Events[T]) *Events[T] {
	if pred == nil {
		panic(errors.New("BUG: Remove requires a predicate"))
	}

	return Filter(func(v T) bool { return !pred(v) }, s)
}

// Constantly emits v in place of every input value.
func Constantly[T, U any](v U, s *Events[T]) *Events[U] {
	return mapcat("constantly", func(T) []U { return []U{v} }, s)
}
