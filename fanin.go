package drift

import "sync"

// arrival is a box received from one of several inputs.
// closed is set, with no box, once that input's channel has closed.
type arrival[T any] struct {
	idx    int
	box    Box[T]
	closed bool
}

// fanIn forwards boxes from any number of listeners onto one channel,
// one goroutine per listener.
// The collecting stage selects on arrivals and must call close when it stops.
type fanIn[T any] struct {
	arrivals chan arrival[T]
	stop     chan struct{}

	mu        sync.Mutex
	stopped   bool
	listeners []listener[T]
}

func newFanIn[T any]() *fanIn[T] {
	return &fanIn[T]{
		arrivals: make(chan arrival[T]),
		stop:     make(chan struct{}),
	}
}

// add starts forwarding from l, tagging its boxes with idx.
// If the fan-in has already stopped, l is closed instead.
func (f *fanIn[T]) add(idx int, l listener[T]) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		l.close()
		return
	}
	f.listeners = append(f.listeners, l)
	f.mu.Unlock()

	go f.forward(idx, l)
}

func (f *fanIn[T]) forward(idx int, l listener[T]) {
	for b := range l.ch {
		select {
		case f.arrivals <- arrival[T]{idx: idx, box: b}:
		case <-f.stop:
			return
		}
	}

	select {
	case f.arrivals <- arrival[T]{idx: idx, closed: true}:
	case <-f.stop:
	}
}

// close detaches every listener and stops the forwarding goroutines.
func (f *fanIn[T]) close() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	ls := f.listeners
	f.listeners = nil
	close(f.stop)
	f.mu.Unlock()

	for _, l := range ls {
		l.close()
	}
}
