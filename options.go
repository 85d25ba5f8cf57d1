package drift

import "log/slog"

// Option configures a stream built by [NewEvents], [NewEventsFrom], or [Sample].
type Option func(*options)

type options struct {
	log     *slog.Logger
	dispose func()
}

// WithLogger sets the logger for the stream
// and for every stream derived from it.
// The default is [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithDispose sets a cleanup action that runs once,
// when the stream is disposed.
func WithDispose(fn func()) Option {
	return func(o *options) {
		o.dispose = fn
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.log == nil {
		o.log = slog.Default()
	}

	return o
}
