package httpingress

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emitkit/emitkit/core/event"
	"github.com/emitkit/emitkit/core/logger"
)

// Emitter is the bus surface the ingress needs. *bus.Bus satisfies it.
type Emitter interface {
	EmitEnvelope(ctx context.Context, env event.Envelope) error
}

// Config holds ingress settings with environment variable mapping.
type Config struct {
	Route        string `env:"INGRESS_ROUTE" envDefault:"/events"`
	MaxBodyBytes int64  `env:"INGRESS_MAX_BODY_BYTES" envDefault:"1048576"`
}

// Ingress translates inbound HTTP requests into local emissions: a remote
// producer POSTs the wire envelope {"event","args","kwargs"} and the ingress
// re-emits it on the bus. Authentication and payload validation beyond the
// envelope shape are the mounting application's responsibility (middleware).
type Ingress struct {
	bus     Emitter
	route   string
	maxBody int64
	logger  *slog.Logger
}

// Option configures an Ingress.
type Option func(*Ingress)

// WithRoute overrides the route the handler is mounted at. Default "/events".
func WithRoute(route string) Option {
	return func(i *Ingress) {
		if route != "" {
			i.route = route
		}
	}
}

// WithMaxBodyBytes bounds the accepted request body size. Default 1 MiB.
func WithMaxBodyBytes(n int64) Option {
	return func(i *Ingress) {
		if n > 0 {
			i.maxBody = n
		}
	}
}

// WithLogger configures structured logging for the ingress.
func WithLogger(log *slog.Logger) Option {
	return func(i *Ingress) {
		if log != nil {
			i.logger = log.With(logger.Component("httpingress"))
		}
	}
}

// New creates an ingress bound to the given bus.
func New(bus Emitter, opts ...Option) (*Ingress, error) {
	if bus == nil {
		return nil, ErrNilEmitter
	}

	i := &Ingress{
		bus:     bus,
		route:   "/events",
		maxBody: 1 << 20,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(i)
	}

	return i, nil
}

// NewFromConfig creates an ingress from configuration. Additional options
// override config values.
func NewFromConfig(cfg Config, bus Emitter, opts ...Option) (*Ingress, error) {
	configOpts := []Option{
		WithRoute(cfg.Route),
		WithMaxBodyBytes(cfg.MaxBodyBytes),
	}
	return New(bus, append(configOpts, opts...)...)
}

// Handler returns the mountable HTTP handler.
func (i *Ingress) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post(i.route, i.handleEvent)
	return r
}

func (i *Ingress) handleEvent(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, i.maxBody)

	var env event.Envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		i.logger.DebugContext(r.Context(), "rejected malformed envelope", logger.Error(err))
		writeError(w, http.StatusBadRequest, "malformed event envelope")
		return
	}
	if env.Event == "" {
		writeError(w, http.StatusBadRequest, "event key is required")
		return
	}

	// Scheduled fan-out must outlive the request: detach from the request
	// context's cancellation while keeping its values.
	if err := i.bus.EmitEnvelope(context.WithoutCancel(r.Context()), env.Clone()); err != nil {
		i.logger.ErrorContext(r.Context(), "emit failed", logger.Event(env.Event), logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, "event bus unavailable")
		return
	}

	i.logger.DebugContext(r.Context(), "event accepted", logger.Event(env.Event))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("{}"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
