package dispatch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/emitkit/emitkit/core/target"
)

// Factory selects a dispatcher implementation by target kind through a
// registration table. New kinds are supported by registering a constructor,
// never by modifying the factory's callers.
//
// Queue targets are routed by their broker address: the factory keeps one
// client per distinct address, dialing it on first use unless a client was
// pinned for that address with WithQueueClient.
type Factory struct {
	mu           sync.RWMutex
	constructors map[target.Kind]Constructor

	logger     *slog.Logger
	httpClient *http.Client

	brokerMu sync.Mutex
	brokers  map[string]XAdder
	dialed   map[string]io.Closer
	dial     func(address string) (XAdder, error)
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithLogger configures structured logging for the factory's built-in
// dispatchers.
func WithLogger(log *slog.Logger) FactoryOption {
	return func(f *Factory) {
		if log != nil {
			f.logger = log
		}
	}
}

// WithFactoryHTTPClient overrides the HTTP client used by the built-in URL
// dispatcher.
func WithFactoryHTTPClient(client *http.Client) FactoryOption {
	return func(f *Factory) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithQueueClient pins the broker client used for queue targets whose
// address equals addr, instead of dialing that address. The caller keeps
// ownership: Close never touches pinned clients.
func WithQueueClient(addr string, client XAdder) FactoryOption {
	return func(f *Factory) {
		if client != nil {
			f.brokers[addr] = client
		}
	}
}

// WithQueueDialer overrides how broker clients are constructed for queue
// target addresses that have no pinned client. The default treats the
// address as a Redis URL.
func WithQueueDialer(dial func(address string) (XAdder, error)) FactoryOption {
	return func(f *Factory) {
		if dial != nil {
			f.dial = dial
		}
	}
}

// NewFactory creates a factory with the built-in URL and queue constructors
// registered.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		constructors: make(map[target.Kind]Constructor),
		brokers:      make(map[string]XAdder),
		dialed:       make(map[string]io.Closer),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		dial:         dialRedis,
	}

	for _, opt := range opts {
		opt(f)
	}

	urlOpts := []URLOption{WithURLLogger(f.logger)}
	if f.httpClient != nil {
		urlOpts = append(urlOpts, WithHTTPClient(f.httpClient))
	}
	urlDispatcher := NewURLDispatcher(urlOpts...)

	f.constructors[target.KindURL] = func(target.Target) (Dispatcher, error) {
		return urlDispatcher, nil
	}
	f.constructors[target.KindQueue] = func(t target.Target) (Dispatcher, error) {
		client, err := f.broker(t.Address)
		if err != nil {
			return nil, err
		}
		return NewQueueDispatcher(client, WithQueueLogger(f.logger))
	}

	return f
}

// Register installs a constructor for kind, replacing any existing one.
// This is the extensibility seam for new target kinds.
func (f *Factory) Register(kind target.Kind, ctor Constructor) {
	if ctor == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.constructors[kind] = ctor
}

// Create returns a dispatcher for the target's kind, or ErrNotImplemented
// when no constructor is registered for it.
func (f *Factory) Create(t target.Target) (Dispatcher, error) {
	f.mu.RLock()
	ctor, ok := f.constructors[t.Kind]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, t.Kind)
	}

	return ctor(t)
}

// broker returns the client serving address, dialing and caching one when
// neither a pinned nor a previously dialed client exists for it.
func (f *Factory) broker(address string) (XAdder, error) {
	f.brokerMu.Lock()
	defer f.brokerMu.Unlock()

	if client, ok := f.brokers[address]; ok {
		return client, nil
	}

	client, err := f.dial(address)
	if err != nil {
		return nil, fmt.Errorf("dial broker %s: %w", address, err)
	}

	f.brokers[address] = client
	if closer, ok := client.(io.Closer); ok {
		f.dialed[address] = closer
	}
	return client, nil
}

// Close releases the broker clients the factory dialed itself. Pinned
// clients stay open; their owner closes them.
func (f *Factory) Close() error {
	f.brokerMu.Lock()
	defer f.brokerMu.Unlock()

	var errs []error
	for addr, c := range f.dialed {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(f.brokers, addr)
		delete(f.dialed, addr)
	}
	return errors.Join(errs...)
}

func dialRedis(address string) (XAdder, error) {
	opts, err := redis.ParseURL(address)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
