package drift

import "sync"

// Drain forwards the stream's values, unwrapped, to sink.
// The head is forwarded first, if there is one.
//
// sink is closed once the stream closes or stop is called.
// Until then, a sink nobody reads from stalls the stream.
//
// Like [*Events.Listen], a drain retains the stream until it ends.
func (e *Events[T]) Drain(sink chan<- T) (stop func()) {
	release := e.Hold()
	l := e.listen()
	quit := make(chan struct{})

	go func() {
		defer release()
		defer close(sink)
		defer l.close()

		for b := range l.ch {
			select {
			case sink <- b.val:
			case <-quit:
				return
			}
		}
	}()

	return sync.OnceFunc(func() {
		close(quit)
		l.close()
	})
}
