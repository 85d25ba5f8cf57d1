package drift

import (
	"errors"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Merge emits every value from every input.
// Values from one input keep their order;
// values from different inputs interleave in no particular order.
//
// A completed input value is forwarded as an ordinary value,
// unless it ends the last open input, in which case it completes the output.
// The output closes once every input has closed.
//
// Merge panics if no streams are given.
func Merge[T any](streams ...*Events[T]) *Events[T] {
	if len(streams) == 0 {
		panic(errors.New("BUG: Merge requires at least one stream"))
	}

	out := derive[T](streams[0].log, "merge", nil, signals(streams)...)

	f := newFanIn[T]()
	open := bitset.New(uint(len(streams)))
	for i, s := range streams {
		open.Set(uint(i))
		f.add(i, s.listen())
	}
	out.onDispose = f.close

	go func() {
		defer out.terminate()
		defer f.close()

		for open.Any() {
			var a arrival[T]
			select {
			case a = <-f.arrivals:
			case <-f.stop:
				return
			}

			i := uint(a.idx)
			if a.closed {
				open.Clear(i)
				continue
			}

			b := a.box
			if b.done {
				open.Clear(i)
				if open.Any() {
					b = Boxed(b.val)
				}
			}

			if !out.send(b) {
				return
			}
		}

		out.log.Debug("Stage stopping because all inputs closed")
	}()

	return out
}

// Zip emits the latest value of every input, in input order,
// each time any input delivers a value.
// Nothing is emitted until every input has delivered at least once.
//
// The output completes when the last open input completes,
// and closes once every input has closed.
//
// Zip panics if no streams are given.
func Zip[T any](streams ...*Events[T]) *Events[[]T] {
	if len(streams) == 0 {
		panic(errors.New("BUG: Zip requires at least one stream"))
	}

	out := derive[[]T](streams[0].log, "zip", nil, signals(streams)...)

	n := uint(len(streams))
	f := newFanIn[T]()
	open := bitset.New(n)
	for i, s := range streams {
		open.Set(uint(i))
		f.add(i, s.listen())
	}
	out.onDispose = f.close

	go func() {
		defer out.terminate()
		defer f.close()

		latest := make([]T, n)
		seen := bitset.New(n)

		for open.Any() {
			var a arrival[T]
			select {
			case a = <-f.arrivals:
			case <-f.stop:
				return
			}

			i := uint(a.idx)
			if a.closed {
				open.Clear(i)
				continue
			}

			if a.box.done {
				open.Clear(i)
			}

			latest[i] = a.box.val
			seen.Set(i)
			if !seen.All() {
				continue
			}

			tuple := slices.Clone(latest)
			b := Boxed(tuple)
			if a.box.done && open.None() {
				b = Completed(tuple)
			}

			if !out.send(b) {
				return
			}
		}

		out.log.Debug("Stage stopping because all inputs closed")
	}()

	return out
}

func signals[T any](streams []*Events[T]) []Signal {
	out := make([]Signal, len(streams))
	for i, s := range streams {
		out[i] = s
	}
	return out
}
