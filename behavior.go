package drift

import (
	"errors"
	"sync/atomic"
)

// Behavior is a pull-based value.
//
// Each read invokes the compute function,
// until compute returns a [Completed] box.
// From then on every read returns that value without recomputing.
//
// Concurrent reads may each run compute;
// a read only promises its result came from one compute call
// or from the completed cache.
type Behavior[T any] struct {
	compute func() Box[T]
	cache   atomic.Pointer[Box[T]]
}

// NewBehavior returns a behavior that recomputes fn on every read.
// It never completes.
func NewBehavior[T any](fn func() T) *Behavior[T] {
	if fn == nil {
		panic(errors.New("BUG: NewBehavior requires a compute function"))
	}

	return &Behavior[T]{
		compute: func() Box[T] { return Boxed(fn()) },
	}
}

// NewCompletableBehavior returns a behavior whose compute function
// may return a [Completed] box to fix its value forever.
func NewCompletableBehavior[T any](fn func() Box[T]) *Behavior[T] {
	if fn == nil {
		panic(errors.New("BUG: NewCompletableBehavior requires a compute function"))
	}

	return &Behavior[T]{compute: fn}
}

// Read returns the behavior's current value.
func (b *Behavior[T]) Read() T {
	if c := b.cache.Load(); c != nil && c.done {
		return c.val
	}

	v := b.compute()
	for {
		old := b.cache.Load()
		if old != nil && old.done {
			// Completed by a concurrent read; that value wins.
			return old.val
		}
		if b.cache.CompareAndSwap(old, &v) {
			return v.val
		}
	}
}

// IsComplete reports whether a completed value has been cached.
func (b *Behavior[T]) IsComplete() bool {
	c := b.cache.Load()
	return c != nil && c.done
}

func (*Behavior[T]) isBehavior() {}
