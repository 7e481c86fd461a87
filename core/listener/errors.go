package listener

import "errors"

// ErrNilListener is returned when a nil function is registered.
var ErrNilListener = errors.New("listener must not be nil")
