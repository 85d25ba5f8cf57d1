package drift

import (
	"context"
	"errors"
)

// Join emits every value of streams[0] until it closes,
// then every value of streams[1], and so on.
// Each stream is only listened to once the previous one has closed,
// starting from its head.
//
// Completed values of all but the last stream are forwarded as ordinary values;
// the output completes when the last stream completes.
//
// Join panics if no streams are given.
func Join[T any](streams ...*Events[T]) *Events[T] {
	if len(streams) == 0 {
		panic(errors.New("BUG: Join requires at least one stream"))
	}

	out := derive[T](streams[0].log, "join", nil, signals(streams)...)

	ctx, cancel := context.WithCancel(context.Background())
	out.onDispose = cancel

	// The first stream is listened to right away,
	// so nothing pushed to it after Join returns is missed.
	first := streams[0].listen()

	go func() {
		defer cancel()
		defer out.terminate()

		for i, s := range streams {
			l := first
			if i > 0 {
				l = s.listen()
			}

			last := i == len(streams)-1
			if !joinOne(ctx, out, l, last) {
				out.log.Debug("Stage stopping early", "stream_index", i)
				return
			}
		}

		out.log.Debug("Stage stopping because all inputs closed")
	}()

	return out
}

// joinOne forwards from l until it closes.
// It reports false if the join should stop.
func joinOne[T any](ctx context.Context, out *Events[T], l listener[T], last bool) bool {
	defer l.close()

	for {
		select {
		case b, ok := <-l.ch:
			if !ok {
				return true
			}
			if b.done && !last {
				b = Boxed(b.val)
			}
			if !out.send(b) {
				return false
			}

		case <-ctx.Done():
			return false
		}
	}
}
