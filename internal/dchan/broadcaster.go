package dchan

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// Broadcaster hands every value given to [*Broadcaster.Distribute]
// to each attached listener in turn.
//
// A value is offered to listener i+1 only after listener i has accepted it,
// so one slow listener stalls every producer.
// Nothing is dropped or queued on behalf of a slow listener;
// the only way to unblock a distribution is to [*Broadcaster.Detach] that listener
// or to [*Broadcaster.Stop] the Broadcaster.
//
// The Broadcaster remembers the last value that every listener accepted.
// Listeners attached with replay receive that value first.
//
// Listener channels belong to the Broadcaster once attached:
// the Broadcaster closes them on detach and on shutdown.
type Broadcaster[T any] struct {
	log *slog.Logger

	sends          chan sendRequest[T]
	attachRequests chan attachRequest[T]
	detachRequests chan chan<- T

	// Written only by the run goroutine, after a complete distribution.
	latest atomic.Pointer[T]

	closing   chan struct{}
	closeOnce sync.Once
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}

	// Only accessed from the run goroutine.
	listeners []chan<- T

	// Attach requests received while a hand-off was in progress.
	pending []attachRequest[T]
}

// BroadcasterConfig is the configuration for [NewBroadcaster].
type BroadcasterConfig[T any] struct {
	// Initial, if set, is reported as the latest value
	// until the first distribution completes.
	Initial *T
}

type sendRequest[T any] struct {
	v         T
	delivered chan struct{}
}

type attachRequest[T any] struct {
	ch     chan<- T
	replay bool
}

// NewBroadcaster returns a Broadcaster and starts its background goroutine.
// The goroutine stops after [*Broadcaster.Close] or [*Broadcaster.Stop].
func NewBroadcaster[T any](log *slog.Logger, cfg BroadcasterConfig[T]) *Broadcaster[T] {
	if log == nil {
		panic(errors.New("BUG: NewBroadcaster requires a logger"))
	}

	b := &Broadcaster[T]{
		log: log,

		// Unbuffered so that a returned Attach or Detach
		// has been observed by the run goroutine.
		sends:          make(chan sendRequest[T]),
		attachRequests: make(chan attachRequest[T]),
		detachRequests: make(chan chan<- T),

		closing: make(chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if cfg.Initial != nil {
		v := *cfg.Initial
		b.latest.Store(&v)
	}

	go b.run()

	return b
}

// Distribute blocks until every listener attached before v was taken
// has accepted v.
// It reports false if the Broadcaster shut down first,
// in which case v is not recorded as the latest value.
func (b *Broadcaster[T]) Distribute(v T) bool {
	req := sendRequest[T]{v: v, delivered: make(chan struct{})}

	select {
	case b.sends <- req:
	case <-b.done:
		return false
	}

	select {
	case <-req.delivered:
		return true
	case <-b.done:
		return false
	}
}

// Latest returns the last value that a distribution completed with,
// or the initial value if there has been none.
func (b *Broadcaster[T]) Latest() (T, bool) {
	if p := b.latest.Load(); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// Attach registers ch to receive every value distributed from now on.
//
// If replay is true and there is a latest value,
// ch receives that value before any other.
// With replay, a value being distributed while Attach is called
// reaches ch exactly once: from the distribution or as the replayed value.
//
// If the Broadcaster has already shut down, ch is closed,
// after the replay value, if any.
// If ch has no room for that value, it is sent from a new goroutine,
// which exits only once the caller receives it.
func (b *Broadcaster[T]) Attach(ch chan<- T, replay bool) {
	select {
	case b.attachRequests <- attachRequest[T]{ch: ch, replay: replay}:
		return
	case <-b.done:
	}

	v, ok := b.Latest()
	if !replay || !ok {
		close(ch)
		return
	}

	select {
	case ch <- v:
		close(ch)
	default:
		go func() {
			ch <- v
			close(ch)
		}()
	}
}

// Detach stops delivery to ch and closes it.
// Detach does not wait for an in-progress distribution to finish.
//
// Detaching a channel that is not attached,
// or detaching after shutdown, has no effect.
func (b *Broadcaster[T]) Detach(ch chan<- T) {
	select {
	case b.detachRequests <- ch:
	case <-b.done:
	}
}

// Close shuts the Broadcaster down once it is not distributing,
// closing every listener.
// Distribute calls made after Close report false.
func (b *Broadcaster[T]) Close() {
	b.closeOnce.Do(func() {
		close(b.closing)
	})
}

// Stop is like Close, but abandons any in-progress distribution.
func (b *Broadcaster[T]) Stop() {
	b.stopOnce.Do(func() {
		close(b.stop)
	})
}

// Done returns a channel that is closed once the Broadcaster
// has shut down and closed every listener.
func (b *Broadcaster[T]) Done() <-chan struct{} {
	return b.done
}

func (b *Broadcaster[T]) run() {
	defer b.shutdown()

	for {
		// Stopping and closing take priority over any other ready case.
		select {
		case <-b.stop:
			return
		case <-b.closing:
			return
		default:
		}

		select {
		case req := <-b.attachRequests:
			b.pending = append(b.pending, req)
			if !b.attachPending() {
				return
			}

		case ch := <-b.detachRequests:
			b.remove(ch)

		case req := <-b.sends:
			if !b.distribute(req.v) {
				return
			}
			close(req.delivered)

		case <-b.closing:
			return

		case <-b.stop:
			return
		}
	}
}

// distribute reports false if the Broadcaster was stopped part way through.
func (b *Broadcaster[T]) distribute(v T) bool {
	// Listeners attached while we are distributing
	// are deferred until every current listener has v.
	for _, ch := range slices.Clone(b.listeners) {
		if !b.deliver(ch, v) {
			return false
		}
	}

	b.latest.Store(&v)

	// Now that v is the latest value, deferred listeners replay it.
	return b.attachPending()
}

// attachPending registers each pending request in order.
// Replay deliveries may accumulate further requests,
// which are registered after the current ones.
func (b *Broadcaster[T]) attachPending() bool {
	for len(b.pending) > 0 {
		req := b.pending[0]
		b.pending = b.pending[1:]

		b.listeners = append(b.listeners, req.ch)

		if !req.replay {
			continue
		}
		if p := b.latest.Load(); p != nil {
			if !b.deliver(req.ch, *p) {
				return false
			}
		}
	}
	b.pending = nil
	return true
}

// deliver blocks until ch accepts v or ch is detached.
// Attach requests arriving meanwhile are queued as pending.
// It reports false only if the Broadcaster was stopped.
func (b *Broadcaster[T]) deliver(ch chan<- T, v T) bool {
	if !slices.Contains(b.listeners, ch) {
		// Detached earlier in this distribution.
		return true
	}

	for {
		select {
		case ch <- v:
			return true

		case req := <-b.attachRequests:
			b.pending = append(b.pending, req)

		case d := <-b.detachRequests:
			b.remove(d)
			if d == ch {
				return true
			}

		case <-b.stop:
			return false
		}
	}
}

func (b *Broadcaster[T]) remove(ch chan<- T) {
	if i := slices.Index(b.listeners, ch); i >= 0 {
		b.listeners = slices.Delete(b.listeners, i, i+1)
		close(ch)
		return
	}

	// The listener may not have been registered yet.
	i := slices.IndexFunc(b.pending, func(req attachRequest[T]) bool {
		return req.ch == ch
	})
	if i >= 0 {
		b.pending = slices.Delete(b.pending, i, i+1)
		close(ch)
	}
}

func (b *Broadcaster[T]) shutdown() {
	b.log.Debug(
		"Broadcaster stopping",
		"listeners", len(b.listeners),
		"pending", len(b.pending),
	)

	for _, ch := range b.listeners {
		close(ch)
	}
	b.listeners = nil

	// Pending listeners were never registered but are still owned by us.
	for _, req := range b.pending {
		close(req.ch)
	}
	b.pending = nil

	close(b.done)
}
