package queueingress

import (
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/emitkit/emitkit/core/dispatch"
	"github.com/emitkit/emitkit/core/event"
)

// DecodeMessage converts a stream entry produced by the queue dispatcher
// back into an envelope. The payload field carries the serialized task call
// whose first positional argument is the event key.
func DecodeMessage(msg redis.XMessage) (event.Envelope, error) {
	raw, ok := msg.Values[dispatch.FieldPayload]
	if !ok {
		return event.Envelope{}, fmt.Errorf("%w: missing %q field", ErrMalformedMessage, dispatch.FieldPayload)
	}

	payload, ok := raw.(string)
	if !ok {
		return event.Envelope{}, fmt.Errorf("%w: %q must be a string, got %T", ErrMalformedMessage, dispatch.FieldPayload, raw)
	}

	var call dispatch.TaskCall
	if err := json.Unmarshal([]byte(payload), &call); err != nil {
		return event.Envelope{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	if len(call.Args) == 0 {
		return event.Envelope{}, fmt.Errorf("%w: empty argument list", ErrMalformedMessage)
	}

	key, ok := call.Args[0].(string)
	if !ok || key == "" {
		return event.Envelope{}, fmt.Errorf("%w: event key must be a non-empty string", ErrMalformedMessage)
	}

	env := event.New(key, call.Args[1:]...)
	for k, v := range call.Kwargs {
		env.Kwargs[k] = v
	}
	return env, nil
}
