package drift

import (
	"context"

	"github.com/bits-and-blooms/bitset"
)

// Flatten emits every value of every stream delivered by s.
// See [FlattenUntil].
func Flatten[T any](s *Events[*Events[T]]) *Events[T] {
	return FlattenUntil(context.Background(), s)
}

// FlattenUntil emits every value of every stream delivered by s.
//
// Each stream s delivers is listened to from its head onward
// and retained by the output; it is never emitted itself.
// Values from different inner streams interleave in no particular order.
//
// The output closes once s and every inner stream have closed.
// It completes if the last of them to close was an inner stream that completed.
//
// Cancelling ctx, or disposing of the output, immediately detaches
// from s and every inner stream and closes the output.
func FlattenUntil[T any](ctx context.Context, s *Events[*Events[T]]) *Events[T] {
	out := derive[T](s.log, "flatten", nil, s)

	ctx, cancel := context.WithCancel(ctx)
	out.onDispose = cancel

	outer := s.listen()
	inner := newFanIn[T]()

	go func() {
		defer out.terminate()
		defer inner.close()
		defer outer.close()
		defer cancel()

		// Bit 0 is the outer stream; inner streams follow in arrival order.
		active := bitset.New(1)
		active.Set(0)
		next := 1

		outerCh := outer.ch
		for active.Any() {
			select {
			case b, ok := <-outerCh:
				if !ok {
					active.Clear(0)
					outerCh = nil
					continue
				}
				if b.val == nil {
					continue
				}

				out.retain(b.val)
				active.Set(uint(next))
				inner.add(next, b.val.listen())
				next++

			case a := <-inner.arrivals:
				i := uint(a.idx)
				if a.closed {
					active.Clear(i)
					continue
				}

				bx := Boxed(a.box.val)
				if a.box.done {
					active.Clear(i)
					if active.None() {
						bx = Completed(a.box.val)
					}
				}

				if !out.send(bx) {
					return
				}

			case <-ctx.Done():
				out.log.Debug(
					"Stage stopping due to context cancellation",
					"cause", context.Cause(ctx),
				)
				return
			}
		}

		out.log.Debug("Stage stopping because all inputs closed")
	}()

	return out
}
