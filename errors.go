package drift

import "errors"

// ErrClosed is returned from [*Events.Await]
// when the stream closed before ever holding a value.
var ErrClosed = errors.New("stream closed without a value")
