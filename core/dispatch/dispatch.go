package dispatch

import (
	"context"

	"github.com/emitkit/emitkit/core/event"
	"github.com/emitkit/emitkit/core/target"
)

// Dispatcher turns (target, envelope) into a concrete network or broker
// operation. One implementation exists per target kind; implementations are
// stateless per call and safe for concurrent use.
//
// Each dispatch call is independent and best-effort: failures propagate to
// the task manager and never prevent dispatch to other targets of the same
// emission. There are no retries.
type Dispatcher interface {
	Dispatch(ctx context.Context, t target.Target, env event.Envelope) error
}

// Constructor builds a dispatcher for a structurally valid target of its
// kind. It may fail when a deployment-time precondition is unmet, such as a
// queue target configured without a broker client.
type Constructor func(t target.Target) (Dispatcher, error)
