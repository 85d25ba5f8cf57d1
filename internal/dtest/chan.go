package dtest

import (
	"testing"
	"time"
)

// ScheduleLeeway is how long the "soon" helpers wait
// before declaring failure.
const ScheduleLeeway = time.Second

// quietPeriod is how long NotSending watches a channel.
const quietPeriod = 20 * time.Millisecond

// ReceiveSoon returns the next value from ch,
// failing the test if none arrives within ScheduleLeeway
// or if ch is closed.
func ReceiveSoon[T any](t testing.TB, ch <-chan T) T {
	t.Helper()

	timer := time.NewTimer(ScheduleLeeway)
	defer timer.Stop()

	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed while waiting to receive")
		}
		return v
	case <-timer.C:
		t.Fatalf("no value received within %s", ScheduleLeeway)
	}

	panic("unreachable")
}

// ReceiveClosedSoon fails the test unless ch is closed
// within ScheduleLeeway without delivering another value.
func ReceiveClosedSoon[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	timer := time.NewTimer(ScheduleLeeway)
	defer timer.Stop()

	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("expected channel to close, got value %v", v)
		}
	case <-timer.C:
		t.Fatalf("channel not closed within %s", ScheduleLeeway)
	}
}

// SendSoon sends v on ch,
// failing the test if the send does not complete within ScheduleLeeway.
func SendSoon[T any](t testing.TB, ch chan<- T, v T) {
	t.Helper()

	timer := time.NewTimer(ScheduleLeeway)
	defer timer.Stop()

	select {
	case ch <- v:
	case <-timer.C:
		t.Fatalf("send not accepted within %s", ScheduleLeeway)
	}
}

// NotSending fails the test if ch delivers a value or closes
// within a short quiet period.
func NotSending[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	timer := time.NewTimer(quietPeriod)
	defer timer.Stop()

	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("expected no value, got %v", v)
		}
		t.Fatalf("expected no value, but channel closed")
	case <-timer.C:
	}
}

// IsClosed fails the test if ch is not already closed.
func IsClosed[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel, but it delivered a value")
		}
	default:
		t.Fatalf("expected closed channel, but it would block")
	}
}
