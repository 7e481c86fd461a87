package config

import "errors"

// ErrNilConfig is returned when Load is given a nil pointer.
var ErrNilConfig = errors.New("config target must not be nil")
