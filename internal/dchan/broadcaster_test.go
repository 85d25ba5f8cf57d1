package dchan_test

import (
	"testing"

	"github.com/gordian-engine/drift/internal/dchan"
	"github.com/gordian-engine/drift/internal/dtest"
	"github.com/stretchr/testify/require"
)

func newBroadcaster[T any](t *testing.T, cfg dchan.BroadcasterConfig[T]) *dchan.Broadcaster[T] {
	t.Helper()

	b := dchan.NewBroadcaster(dtest.NewLogger(t), cfg)
	t.Cleanup(b.Stop)
	return b
}

// distributeAsync runs Distribute in the background
// and reports its result on the returned channel.
func distributeAsync[T any](b *dchan.Broadcaster[T], v T) <-chan bool {
	ch := make(chan bool, 1)
	go func() {
		ch <- b.Distribute(v)
	}()
	return ch
}

func TestBroadcaster_distributesToAllListeners(t *testing.T) {
	t.Parallel()

	b := newBroadcaster(t, dchan.BroadcasterConfig[int]{})

	l1 := make(chan int, 1)
	l2 := make(chan int, 1)
	b.Attach(l1, false)
	b.Attach(l2, false)

	require.True(t, b.Distribute(1))

	// Distribute returned, so both already hold the value.
	require.Equal(t, 1, <-l1)
	require.Equal(t, 1, <-l2)
}

func TestBroadcaster_slowListenerBlocksDistribute(t *testing.T) {
	t.Parallel()

	b := newBroadcaster(t, dchan.BroadcasterConfig[int]{})

	fast := make(chan int, 8)
	slow := make(chan int) // Unbuffered and never read until later.
	b.Attach(fast, false)
	b.Attach(slow, false)

	res := distributeAsync(b, 1)
	require.Equal(t, 1, dtest.ReceiveSoon(t, fast))
	dtest.NotSending(t, res)

	require.Equal(t, 1, dtest.ReceiveSoon(t, slow))
	require.True(t, dtest.ReceiveSoon(t, res))
}

func TestBroadcaster_detachUnblocksStalledDistribution(t *testing.T) {
	t.Parallel()

	b := newBroadcaster(t, dchan.BroadcasterConfig[int]{})

	stalled := make(chan int)
	other := make(chan int, 8)
	b.Attach(stalled, false)
	b.Attach(other, false)

	res := distributeAsync(b, 1)

	// other is behind stalled, so it cannot have received yet.
	dtest.NotSending(t, other)

	b.Detach(stalled)
	dtest.ReceiveClosedSoon(t, stalled)

	require.Equal(t, 1, dtest.ReceiveSoon(t, other))
	require.True(t, dtest.ReceiveSoon(t, res))
}

func TestBroadcaster_latestOnlyAfterEveryListenerAccepts(t *testing.T) {
	t.Parallel()

	b := newBroadcaster(t, dchan.BroadcasterConfig[int]{})

	stalled := make(chan int)
	b.Attach(stalled, false)

	res := distributeAsync(b, 1)
	dtest.NotSending(t, res)

	_, ok := b.Latest()
	require.False(t, ok)

	require.Equal(t, 1, dtest.ReceiveSoon(t, stalled))
	require.True(t, dtest.ReceiveSoon(t, res))

	v, ok := b.Latest()
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestBroadcaster_attachDuringDistributionReceivesValueOnce(t *testing.T) {
	t.Parallel()

	for range 100 {
		b := dchan.NewBroadcaster(dtest.NewLogger(t), dchan.BroadcasterConfig[int]{})

		first := make(chan int)
		b.Attach(first, false)

		res := distributeAsync(b, 1)

		// Whether this lands before or during the distribution,
		// late sees 1 exactly once.
		late := make(chan int, 8)
		b.Attach(late, true)

		require.Equal(t, 1, dtest.ReceiveSoon(t, first))
		require.True(t, dtest.ReceiveSoon(t, res))

		res = distributeAsync(b, 2)
		require.Equal(t, 2, dtest.ReceiveSoon(t, first))
		require.True(t, dtest.ReceiveSoon(t, res))

		require.Equal(t, 1, <-late)
		require.Equal(t, 2, <-late)
		require.Empty(t, late)

		b.Stop()
	}
}

func TestBroadcaster_detachBeforeRegistrationClosesListener(t *testing.T) {
	t.Parallel()

	b := newBroadcaster(t, dchan.BroadcasterConfig[int]{})

	first := make(chan int)
	b.Attach(first, false)

	res := distributeAsync(b, 1)

	// Possibly queued behind the in-progress hand-off to first.
	late := make(chan int, 1)
	b.Attach(late, false)
	b.Detach(late)

	dtest.ReceiveClosedSoon(t, late)
	require.Equal(t, 1, dtest.ReceiveSoon(t, first))
	require.True(t, dtest.ReceiveSoon(t, res))
}

func TestBroadcaster_replay(t *testing.T) {
	t.Parallel()

	initial := 7
	b := newBroadcaster(t, dchan.BroadcasterConfig[int]{Initial: &initial})

	withReplay := make(chan int, 1)
	without := make(chan int, 1)
	b.Attach(withReplay, true)
	b.Attach(without, false)

	require.Equal(t, 7, dtest.ReceiveSoon(t, withReplay))
	dtest.NotSending(t, without)

	require.True(t, b.Distribute(8))
	require.Equal(t, 8, <-withReplay)
	require.Equal(t, 8, <-without)
}

func TestBroadcaster_closeClosesListeners(t *testing.T) {
	t.Parallel()

	b := newBroadcaster(t, dchan.BroadcasterConfig[int]{})

	l := make(chan int)
	b.Attach(l, false)

	b.Close()
	b.Close()

	dtest.ReceiveClosedSoon(t, l)
	dtest.ReceiveClosedSoon(t, b.Done())

	require.False(t, b.Distribute(1))

	// Attaching after shutdown closes immediately.
	late := make(chan int)
	b.Attach(late, false)
	dtest.IsClosed(t, late)

	// And detaching is harmless.
	b.Detach(late)
}

func TestBroadcaster_attachAfterShutdownReplaysWithoutGoroutine(t *testing.T) {
	t.Parallel()

	initial := "final"
	b := newBroadcaster(t, dchan.BroadcasterConfig[string]{Initial: &initial})

	b.Close()
	dtest.ReceiveClosedSoon(t, b.Done())

	// With room in the channel, the value and the close
	// are both in place by the time Attach returns.
	l := make(chan string, 1)
	b.Attach(l, true)

	select {
	case v := <-l:
		require.Equal(t, "final", v)
	default:
		t.Fatal("replay value not buffered on return from Attach")
	}
	dtest.IsClosed(t, l)
}

func TestBroadcaster_attachAfterShutdownReplaysToUnbufferedListener(t *testing.T) {
	t.Parallel()

	initial := "final"
	b := newBroadcaster(t, dchan.BroadcasterConfig[string]{Initial: &initial})

	b.Close()
	dtest.ReceiveClosedSoon(t, b.Done())

	l := make(chan string)
	b.Attach(l, true)

	require.Equal(t, "final", dtest.ReceiveSoon(t, l))
	dtest.ReceiveClosedSoon(t, l)
}

func TestBroadcaster_stopAbandonsStalledDistribution(t *testing.T) {
	t.Parallel()

	b := newBroadcaster(t, dchan.BroadcasterConfig[int]{})

	stalled := make(chan int)
	b.Attach(stalled, false)

	res := distributeAsync(b, 1)
	dtest.NotSending(t, res)

	b.Stop()
	b.Stop()

	require.False(t, dtest.ReceiveSoon(t, res))
	dtest.ReceiveClosedSoon(t, b.Done())
	dtest.IsClosed(t, stalled)

	// The abandoned value never became the latest.
	_, ok := b.Latest()
	require.False(t, ok)
}
