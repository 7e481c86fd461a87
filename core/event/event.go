package event

// Envelope carries a single emission: the event key plus the positional and
// named arguments passed alongside it. The same envelope is delivered to
// every matching local listener and serialized verbatim as the wire payload
// for remote dispatch:
//
//	{"event": "user.joined", "args": ["Archer"], "kwargs": {}}
//
// Event keys are opaque strings; the engine never interprets them beyond
// equality. Enumerated event sets are declared as typed string constants
// whose underlying value is what appears on the wire.
type Envelope struct {
	Event  string         `json:"event"`
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

// New builds an envelope for the given event key and positional arguments.
// Args and Kwargs are always non-nil so the envelope marshals to the
// canonical wire shape ("args":[] rather than "args":null).
func New(key string, args ...any) Envelope {
	if args == nil {
		args = []any{}
	}
	return Envelope{
		Event:  key,
		Args:   args,
		Kwargs: map[string]any{},
	}
}

// Clone returns a copy with fresh Args and Kwargs containers. Each consumer
// of an emission receives its own clone, so one listener mutating the
// argument slice or kwargs map is never observable by another.
func (e Envelope) Clone() Envelope {
	args := make([]any, len(e.Args))
	copy(args, e.Args)

	kwargs := make(map[string]any, len(e.Kwargs))
	for k, v := range e.Kwargs {
		kwargs[k] = v
	}

	return Envelope{
		Event:  e.Event,
		Args:   args,
		Kwargs: kwargs,
	}
}
