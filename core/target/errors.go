package target

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedTarget is returned when a raw target description is
	// neither a string, a Target, nor a structured map.
	ErrUnsupportedTarget = errors.New("unsupported target description")

	// ErrUnknownKind is returned when a structured description is missing
	// its kind field or carries an unrecognized tag.
	ErrUnknownKind = errors.New("unknown target kind")

	// ErrMissingAddress is returned when a target has no address.
	ErrMissingAddress = errors.New("target address is required")

	// ErrInvalidField is returned when a structured description carries a
	// field of the wrong type.
	ErrInvalidField = errors.New("invalid target field")
)

func unknownKindError(kind string) error {
	if kind == "" {
		return fmt.Errorf("%w: missing \"kind\" field", ErrUnknownKind)
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
