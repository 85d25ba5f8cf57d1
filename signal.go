package drift

// Signal is a time-varying value: a [*Behavior] or an [*Events] stream.
type Signal interface {
	// IsComplete reports whether the value will never change again.
	IsComplete() bool
}

type behaviorSignal interface {
	Signal
	isBehavior()
}

type eventsSignal interface {
	Signal
	isEvents()
}

// IsSignal reports whether v is a behavior or an event stream.
func IsSignal(v any) bool {
	return IsBehavior(v) || IsEvents(v)
}

// IsBehavior reports whether v is a [*Behavior] of any type.
func IsBehavior(v any) bool {
	_, ok := v.(behaviorSignal)
	return ok
}

// IsEvents reports whether v is an [*Events] stream of any type.
func IsEvents(v any) bool {
	_, ok := v.(eventsSignal)
	return ok
}

// IsComplete reports whether s will never change again.
func IsComplete(s Signal) bool {
	return s.IsComplete()
}
