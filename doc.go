// Package drift is an in-memory functional-reactive runtime.
//
// It offers two kinds of time-varying value.
// A [Behavior] is pulled: every [*Behavior.Read] recomputes it,
// until it produces a completed value that is then cached forever.
// An [Events] stream is pushed: producers call [*Events.Push],
// and every attached listener receives each value in order.
//
// Streams apply full backpressure.
// A stream hands a value to its next listener only after
// the previous listener has accepted it,
// so one slow consumer stalls its producer instead of
// values being dropped or queued.
//
// The combinators ([Map], [Filter], [Merge], [Zip], [Reduce],
// [Throttle], [Delay], [Join], [Flatten], and the rest)
// each return a new derived stream fed by a single goroutine.
// A derived stream keeps its parents alive;
// call [*Events.Dispose] on it when it is no longer needed.
// Disposal closes the derived stream, stops its goroutine,
// and releases its parents, disposing derived parents
// that nothing else retains.
//
// Completion is signaled by pushing a value wrapped with [Completed],
// or with [*Events.Complete].
// A completed value is always the last one a stream delivers,
// and later pushes are silently ignored.
package drift
