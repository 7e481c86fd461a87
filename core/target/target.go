package target

// Kind tags the transport a remote target is reached over. New kinds are
// introduced by registering a dispatcher constructor for the tag in the
// dispatch factory; the parser only guards against unknown tags.
type Kind string

const (
	// KindURL targets receive the event envelope as an HTTP POST.
	KindURL Kind = "url"

	// KindQueue targets receive the event as a named remote task invocation
	// submitted to a broker stream.
	KindQueue Kind = "queue"
)

// Valid reports whether the kind is a recognized tag.
func (k Kind) Valid() bool {
	switch k {
	case KindURL, KindQueue:
		return true
	}
	return false
}

// Defaults applied to queue targets when the structured description omits
// the routing fields.
const (
	DefaultQueueName    = "default"
	DefaultFunctionName = "events"
)

// Target describes one configured remote consumer. Targets are immutable
// once registered; the registry hands out copies.
//
// Events is the optional filter: nil means the target receives every event,
// a non-nil slice restricts delivery to the listed keys. Headers applies to
// URL targets; QueueName and FunctionName apply to queue targets.
type Target struct {
	Kind         Kind
	Address      string
	Events       []string
	Headers      map[string]string
	QueueName    string
	FunctionName string
}

// Wants reports whether the target's event filter admits key.
func (t Target) Wants(key string) bool {
	if t.Events == nil {
		return true
	}
	for _, e := range t.Events {
		if e == key {
			return true
		}
	}
	return false
}

// clone returns a copy whose Events and Headers share no storage with the
// receiver. A nil Events filter stays nil; an empty one stays empty.
func (t Target) clone() Target {
	if t.Events != nil {
		events := make([]string, len(t.Events))
		copy(events, t.Events)
		t.Events = events
	}
	if t.Headers != nil {
		headers := make(map[string]string, len(t.Headers))
		for k, v := range t.Headers {
			headers[k] = v
		}
		t.Headers = headers
	}
	return t
}

func (t Target) validate() error {
	if !t.Kind.Valid() {
		return unknownKindError(string(t.Kind))
	}
	if t.Address == "" {
		return ErrMissingAddress
	}
	return nil
}
