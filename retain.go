package drift

import "sync"

// retention records the signals a derived stream keeps alive.
//
// Parents are only ever appended until the stream is disposed,
// at which point they are all released together.
type retention struct {
	mu       sync.Mutex
	parents  []Signal
	released bool

	// Derived streams are disposed when their last retainer releases them.
	derived bool
	refs    int

	// Host listeners each hold one ref until they unlisten.
	hosts map[any]struct{}
}

// retainable is implemented by signals that count their retainers.
type retainable interface {
	acquire()
	release()
}

// retain records that e keeps parents alive.
// Retaining after e has been disposed has no effect.
func (e *Events[T]) retain(parents ...Signal) {
	e.deps.mu.Lock()
	if e.deps.released {
		e.deps.mu.Unlock()
		return
	}
	e.deps.parents = append(e.deps.parents, parents...)
	e.deps.mu.Unlock()

	for _, p := range parents {
		if r, ok := p.(retainable); ok {
			r.acquire()
		}
	}
}

func (e *Events[T]) releaseParents() {
	e.deps.mu.Lock()
	parents := e.deps.parents
	e.deps.parents = nil
	e.deps.released = true
	e.deps.mu.Unlock()

	for _, p := range parents {
		if r, ok := p.(retainable); ok {
			r.release()
		}
	}
}

func (e *Events[T]) acquire() {
	e.deps.mu.Lock()
	e.deps.refs++
	e.deps.mu.Unlock()
}

func (e *Events[T]) release() {
	e.deps.mu.Lock()
	e.deps.refs--
	last := e.deps.refs == 0 && e.deps.derived
	e.deps.mu.Unlock()

	if last {
		e.Dispose()
	}
}

// acquireFor takes a ref on behalf of the host listener key.
// Keys already holding a ref are ignored.
func (e *Events[T]) acquireFor(key any) {
	e.deps.mu.Lock()
	if _, ok := e.deps.hosts[key]; ok {
		e.deps.mu.Unlock()
		return
	}
	if e.deps.hosts == nil {
		e.deps.hosts = make(map[any]struct{})
	}
	e.deps.hosts[key] = struct{}{}
	e.deps.refs++
	e.deps.mu.Unlock()
}

// releaseFor drops the ref held for key, if there is one.
func (e *Events[T]) releaseFor(key any) {
	e.deps.mu.Lock()
	_, ok := e.deps.hosts[key]
	delete(e.deps.hosts, key)
	e.deps.mu.Unlock()

	if ok {
		e.release()
	}
}

// Hold retains the stream on behalf of the caller,
// so that a derived stream is not disposed when the streams
// derived from it are.
// Calling the returned function releases the hold;
// it is safe to call more than once.
func (e *Events[T]) Hold() (release func()) {
	e.acquire()
	return sync.OnceFunc(e.release)
}
