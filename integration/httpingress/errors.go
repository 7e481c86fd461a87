package httpingress

import "errors"

// ErrNilEmitter is returned when the ingress is constructed without a bus.
var ErrNilEmitter = errors.New("ingress requires an emitter")
