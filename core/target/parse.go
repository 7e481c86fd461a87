package target

import "fmt"

// Parse converts a raw target description into a typed Target.
//
// Accepted shapes:
//   - a bare string: sugar for a URL target with that address, no headers
//     and no event filter;
//   - a Target value: validated and returned as-is;
//   - a map[string]any: a structured description selected by its "kind"
//     (alias "type") field.
//
// Structured descriptions accept "address", "events", "headers" (URL
// targets), and "queue_name"/"function_name" (queue targets; camelCase
// aliases recognized). Queue routing fields default to DefaultQueueName and
// DefaultFunctionName when omitted.
//
// Any other raw shape fails with ErrUnsupportedTarget. A missing or
// unrecognized kind fails with ErrUnknownKind; a missing address with
// ErrMissingAddress; a wrongly typed field with ErrInvalidField. All of
// these surface at registration time, never at dispatch time.
func Parse(raw any) (Target, error) {
	switch v := raw.(type) {
	case string:
		t := Target{Kind: KindURL, Address: v}
		return t, t.validate()
	case Target:
		return v, v.validate()
	case map[string]any:
		return parseMap(v)
	default:
		return Target{}, fmt.Errorf("%w: %T", ErrUnsupportedTarget, raw)
	}
}

func parseMap(m map[string]any) (Target, error) {
	kind, ok, err := stringField(m, "kind", "type")
	if err != nil {
		return Target{}, err
	}
	if !ok {
		return Target{}, unknownKindError("")
	}

	t := Target{Kind: Kind(kind)}
	if !t.Kind.Valid() {
		return Target{}, unknownKindError(kind)
	}

	if t.Address, _, err = stringField(m, "address"); err != nil {
		return Target{}, err
	}

	if t.Events, err = eventsField(m); err != nil {
		return Target{}, err
	}

	switch t.Kind {
	case KindURL:
		if t.Headers, err = headersField(m); err != nil {
			return Target{}, err
		}
	case KindQueue:
		queue, ok, err := stringField(m, "queue_name", "queueName")
		if err != nil {
			return Target{}, err
		}
		if !ok || queue == "" {
			queue = DefaultQueueName
		}
		t.QueueName = queue

		fn, ok, err := stringField(m, "function_name", "functionName")
		if err != nil {
			return Target{}, err
		}
		if !ok || fn == "" {
			fn = DefaultFunctionName
		}
		t.FunctionName = fn
	}

	return t, t.validate()
}

// stringField returns the first present key, reporting whether any was set.
func stringField(m map[string]any, keys ...string) (string, bool, error) {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return "", true, fmt.Errorf("%w: %q must be a string, got %T", ErrInvalidField, key, raw)
		}
		return s, true, nil
	}
	return "", false, nil
}

// eventsField parses the optional event filter. Absent or explicit nil means
// "all events". JSON-decoded descriptions carry []any, programmatic ones may
// carry []string; both are accepted.
func eventsField(m map[string]any) ([]string, error) {
	raw, ok := m["events"]
	if !ok || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case []string:
		events := make([]string, len(v))
		copy(events, v)
		return events, nil
	case []any:
		events := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: \"events\" entries must be strings, got %T", ErrInvalidField, item)
			}
			events = append(events, s)
		}
		return events, nil
	default:
		return nil, fmt.Errorf("%w: \"events\" must be a list of strings, got %T", ErrInvalidField, raw)
	}
}

func headersField(m map[string]any) (map[string]string, error) {
	raw, ok := m["headers"]
	if !ok || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case map[string]string:
		headers := make(map[string]string, len(v))
		for k, val := range v {
			headers[k] = val
		}
		return headers, nil
	case map[string]any:
		headers := make(map[string]string, len(v))
		for k, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: header %q must be a string, got %T", ErrInvalidField, k, item)
			}
			headers[k] = s
		}
		return headers, nil
	default:
		return nil, fmt.Errorf("%w: \"headers\" must be a string map, got %T", ErrInvalidField, raw)
	}
}
