package drift_test

import (
	"testing"
	"time"

	"github.com/gordian-engine/drift"
	"github.com/gordian-engine/drift/internal/dtest"
)

// listenFor attaches a buffered listener to e for the duration of the test.
func listenFor[T any](t *testing.T, e *drift.Events[T]) <-chan drift.Box[T] {
	t.Helper()

	ch := make(chan drift.Box[T], 64)
	e.Listen(ch)
	t.Cleanup(func() { e.Unlisten(ch) })

	return ch
}

// receiveVals receives n boxes from ch and returns their values.
func receiveVals[T any](t *testing.T, ch <-chan drift.Box[T], n int) []T {
	t.Helper()

	out := make([]T, n)
	for i := range out {
		out[i] = dtest.ReceiveSoon(t, ch).Val()
	}
	return out
}

// receiveUntilClosed receives boxes from ch until it closes.
func receiveUntilClosed[T any](t *testing.T, ch <-chan drift.Box[T]) []drift.Box[T] {
	t.Helper()

	deadline := time.After(dtest.ScheduleLeeway)

	var out []drift.Box[T]
	for {
		select {
		case b, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, b)
		case <-deadline:
			t.Fatalf("channel not closed in time; received %v so far", out)
		}
	}
}

func newEvents[T any](t *testing.T) *drift.Events[T] {
	t.Helper()

	e := drift.NewEvents[T](drift.WithLogger(dtest.NewLogger(t)))
	t.Cleanup(e.Dispose)
	return e
}
