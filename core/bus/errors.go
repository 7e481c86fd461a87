package bus

import "errors"

// ErrBusClosed is returned by Emit after Shutdown.
var ErrBusClosed = errors.New("bus is closed")
