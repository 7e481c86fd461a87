package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/emitkit/emitkit/core/event"
	"github.com/emitkit/emitkit/core/logger"
	"github.com/emitkit/emitkit/core/target"
)

// DefaultHTTPTimeout bounds a single webhook delivery.
const DefaultHTTPTimeout = 10 * time.Second

// URLDispatcher delivers envelopes to URL targets as JSON POST requests.
//
// Only transport-level failures count as dispatch failures. A non-2xx
// response is logged and treated as delivered: the receiver saw the event,
// and best-effort delivery carries no acknowledgment protocol.
type URLDispatcher struct {
	client *http.Client
	logger *slog.Logger
}

// URLOption configures a URLDispatcher.
type URLOption func(*URLDispatcher)

// WithHTTPClient overrides the HTTP client. The default client carries
// DefaultHTTPTimeout.
func WithHTTPClient(client *http.Client) URLOption {
	return func(d *URLDispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// WithURLLogger configures structured logging for the dispatcher.
func WithURLLogger(log *slog.Logger) URLOption {
	return func(d *URLDispatcher) {
		if log != nil {
			d.logger = log.With(logger.Component("dispatch.url"))
		}
	}
}

// NewURLDispatcher creates a webhook dispatcher with the given options.
func NewURLDispatcher(opts ...URLOption) *URLDispatcher {
	d := &URLDispatcher{
		client: &http.Client{Timeout: DefaultHTTPTimeout},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dispatch posts the envelope to t.Address with t.Headers.
func (d *URLDispatcher) Dispatch(ctx context.Context, t target.Target, env event.Envelope) error {
	body, err := json.Marshal(env.Clone())
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Address, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", t.Address, err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", t.Address, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	d.logger.DebugContext(ctx, "url target responded",
		logger.Target(t.Address),
		logger.Event(env.Event),
		slog.Int("status", resp.StatusCode))

	return nil
}
