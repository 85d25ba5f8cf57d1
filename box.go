package drift

// Box wraps a value traveling through a stream,
// marking whether it is the stream's final value.
//
// Boxing lets zero values, such as nil pointers or empty strings,
// be delivered without being mistaken for the end of a stream.
type Box[T any] struct {
	val  T
	done bool
}

// Boxed wraps v as an ordinary value.
func Boxed[T any](v T) Box[T] {
	return Box[T]{val: v}
}

// Completed wraps v as the final value of a stream or behavior.
func Completed[T any](v T) Box[T] {
	return Box[T]{val: v, done: true}
}

// Val returns the wrapped value.
func (b Box[T]) Val() T {
	return b.val
}

// IsCompleted reports whether b was created with [Completed].
func (b Box[T]) IsCompleted() bool {
	return b.done
}

// rebox wraps v with the same completion state as b.
func rebox[T, U any](b Box[T], v U) Box[U] {
	return Box[U]{val: v, done: b.done}
}
