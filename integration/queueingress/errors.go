package queueingress

import "errors"

var (
	// ErrNilClient is returned when the consumer is constructed without a
	// broker client.
	ErrNilClient = errors.New("queue ingress requires a broker client")

	// ErrNilEmitter is returned when the consumer is constructed without a
	// bus.
	ErrNilEmitter = errors.New("queue ingress requires an emitter")

	// ErrMalformedMessage is returned for stream entries that do not carry a
	// decodable task call.
	ErrMalformedMessage = errors.New("malformed queue message")
)
