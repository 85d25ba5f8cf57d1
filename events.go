package drift

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gordian-engine/drift/internal/dchan"
)

// Events is a push-based stream of discrete values.
//
// Values pushed to a stream are handed to every attached listener,
// one listener at a time, with full backpressure.
// The last value every listener accepted is cached as the stream's head,
// so [*Events.Read] never blocks
// and new listeners start from the current value.
//
// Streams built by combinators hold their parents alive
// until they are disposed; see [*Events.Dispose].
type Events[T any] struct {
	log *slog.Logger

	bc *dchan.Broadcaster[Box[T]]

	// mu serializes producers and guards closing the broadcaster.
	mu     sync.Mutex
	closed bool

	complete atomic.Bool

	disposing   chan struct{}
	disposeOnce sync.Once
	onDispose   func()

	deps retention
}

// NewEvents returns a new stream with no value.
func NewEvents[T any](opts ...Option) *Events[T] {
	o := buildOptions(opts)
	return newEvents[T](o.log, o.dispose, nil)
}

// NewEventsFrom returns a new stream whose head is init.
// init is not pushed, but listeners attached to the stream
// receive it first, as with any head.
func NewEventsFrom[T any](init T, opts ...Option) *Events[T] {
	o := buildOptions(opts)
	b := Boxed(init)
	return newEvents(o.log, o.dispose, &b)
}

func newEvents[T any](log *slog.Logger, dispose func(), init *Box[T]) *Events[T] {
	return &Events[T]{
		log: log,

		bc: dchan.NewBroadcaster(log, dchan.BroadcasterConfig[Box[T]]{
			Initial: init,
		}),

		disposing: make(chan struct{}),
		onDispose: dispose,
	}
}

// derive returns a stream for a combinator stage.
// The caller is responsible for starting the stage goroutine
// and for setting onDispose before returning the stream.
func derive[U any](log *slog.Logger, stage string, init *Box[U], parents ...Signal) *Events[U] {
	e := newEvents(log.With("stage", stage), nil, init)
	e.deps.derived = true
	e.retain(parents...)
	return e
}

// Push delivers each value in order.
// Push blocks until every listener has accepted each value,
// so after Push returns, [*Events.Read] reports the last of vals.
//
// Pushing to a completed or disposed stream has no effect.
func (e *Events[T]) Push(vals ...T) {
	for _, v := range vals {
		if !e.send(Boxed(v)) {
			return
		}
	}
}

// Send is like [*Events.Push], but each box may be [Completed].
// Boxes after a completed box are ignored.
func (e *Events[T]) Send(boxes ...Box[T]) {
	for _, b := range boxes {
		if !e.send(b) {
			return
		}
	}
}

// Complete delivers v as the stream's final value.
func (e *Events[T]) Complete(v T) {
	e.send(Completed(v))
}

// send hands b to every listener.
// It reports false if the stream no longer accepts values.
func (e *Events[T]) send(b Box[T]) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return false
	}

	if !e.bc.Distribute(b) {
		// Disposed while waiting on a listener.
		return false
	}

	if b.done {
		e.closeLocked()
	}

	return true
}

// emit sends each of vals, boxing the last one as completed if final is set.
func (e *Events[T]) emit(vals []T, final bool) bool {
	for i, v := range vals {
		b := Boxed(v)
		if final && i == len(vals)-1 {
			b = Completed(v)
		}
		if !e.send(b) {
			return false
		}
	}
	return true
}

// terminate closes the stream without delivering another value.
func (e *Events[T]) terminate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		e.closeLocked()
	}
}

func (e *Events[T]) closeLocked() {
	e.closed = true
	e.complete.Store(true)
	e.bc.Close()
}

// Read returns the stream's head without blocking.
// ok is false if the stream has never held a value.
func (e *Events[T]) Read() (v T, ok bool) {
	b, ok := e.bc.Latest()
	return b.val, ok
}

// Listen attaches ch to the stream.
// If the stream has a head, ch receives it first.
// ch then receives every later value, including a final completed box.
//
// The stream closes ch when the stream closes
// or when ch is passed to [*Events.Unlisten].
// A listener that stops reading from ch stalls the stream,
// and ch must be read until it is closed.
// A value pushed while Listen runs reaches ch exactly once.
//
// A listened stream counts as retained until [*Events.Unlisten],
// so it is not disposed on behalf of its derived streams meanwhile.
func (e *Events[T]) Listen(ch chan<- Box[T]) {
	e.acquireFor(ch)
	e.bc.Attach(ch, true)
}

// Unlisten detaches ch, which was previously passed to [*Events.Listen],
// and closes it.
func (e *Events[T]) Unlisten(ch chan<- Box[T]) {
	e.bc.Detach(ch)
	e.releaseFor(ch)
}

// Done returns a channel that is closed once the stream
// will deliver nothing more, through completion or disposal.
func (e *Events[T]) Done() <-chan struct{} {
	return e.bc.Done()
}

// IsComplete reports whether the stream will never change again.
func (e *Events[T]) IsComplete() bool {
	return e.complete.Load()
}

func (*Events[T]) isEvents() {}

// Dispose releases the stream.
//
// Pending and future pushes are dropped, every listener is closed,
// the stream's dispose action runs,
// and the stream stops retaining its parents.
// Derived parents that are then retained by nothing are disposed too.
//
// Dispose is safe to call more than once.
func (e *Events[T]) Dispose() {
	e.disposeOnce.Do(func() {
		close(e.disposing)

		// Stopping first releases a producer stalled on a listener,
		// which holds mu.
		e.bc.Stop()
		e.terminate()

		if e.onDispose != nil {
			e.onDispose()
		}

		e.releaseParents()

		e.log.Debug("Stream disposed")
	})
}

// listener is a stage's subscription to one of its inputs.
type listener[T any] struct {
	ch  chan Box[T]
	src *Events[T]
}

// listen attaches a new unbuffered listener, replaying the head.
func (e *Events[T]) listen() listener[T] {
	ch := make(chan Box[T])
	e.bc.Attach(ch, true)
	return listener[T]{ch: ch, src: e}
}

// close detaches the listener, closing its channel.
func (l listener[T]) close() {
	l.src.bc.Detach(l.ch)
}
