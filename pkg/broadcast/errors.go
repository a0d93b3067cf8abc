package broadcast

import "errors"

// ErrClosed is returned when subscribing to a broadcaster that has been closed.
var ErrClosed = errors.New("broadcast.closed")
