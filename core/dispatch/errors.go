package dispatch

import "errors"

var (
	// ErrNotImplemented is returned by Factory.Create for a structurally
	// valid target whose kind has no registered dispatcher.
	ErrNotImplemented = errors.New("no dispatcher registered for target kind")

	// ErrQueueClientNil is returned when a queue dispatcher is constructed
	// without a broker client. This is a deployment-time precondition, not a
	// per-call one.
	ErrQueueClientNil = errors.New("queue dispatcher requires a broker client")
)
