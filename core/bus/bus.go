package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/emitkit/emitkit/core/dispatch"
	"github.com/emitkit/emitkit/core/event"
	"github.com/emitkit/emitkit/core/listener"
	"github.com/emitkit/emitkit/core/logger"
	"github.com/emitkit/emitkit/core/target"
	"github.com/emitkit/emitkit/core/task"
)

// Bus fans emitted events out to local listeners and remote targets. It is
// an explicitly constructed instance: callers that need a shared bus pass
// the handle around rather than relying on a global.
type Bus struct {
	listeners   *listener.Registry
	targets     *target.Registry
	factory     *dispatch.Factory
	ownsFactory bool
	manager     *task.Manager
	scheduler   task.Scheduler
	logger      *slog.Logger
	closed      atomic.Bool
}

// Option configures a Bus.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	manager     *task.Manager
	scheduler   task.Scheduler
	factory     *dispatch.Factory
	factoryOpts []dispatch.FactoryOption
}

// WithLogger configures structured logging for the bus and the components
// it constructs. If not set, logging is discarded.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithTaskManager supplies an externally owned task manager, letting several
// buses share one drain scope.
func WithTaskManager(m *task.Manager) Option {
	return func(o *options) {
		if m != nil {
			o.manager = m
		}
	}
}

// WithScheduler overrides the scheduling surface. Intended for tests that
// record scheduling order; Wait and Shutdown still operate on the bus's task
// manager.
func WithScheduler(s task.Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithFactory supplies a pre-configured dispatcher factory, e.g. one with
// custom target kinds registered.
func WithFactory(f *dispatch.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithQueueClient pins the broker client used for queue targets whose
// address equals addr. Addresses without a pinned client are dialed on
// first dispatch (see dispatch.WithQueueDialer).
func WithQueueClient(addr string, client dispatch.XAdder) Option {
	return func(o *options) {
		o.factoryOpts = append(o.factoryOpts, dispatch.WithQueueClient(addr, client))
	}
}

// WithHTTPClient overrides the HTTP client used for URL targets.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.factoryOpts = append(o.factoryOpts, dispatch.WithFactoryHTTPClient(client))
	}
}

// New creates a Bus with the given options.
func New(opts ...Option) *Bus {
	o := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.manager == nil {
		o.manager = task.NewManager(task.WithLogger(o.logger))
	}
	if o.scheduler == nil {
		o.scheduler = o.manager
	}
	ownsFactory := o.factory == nil
	if ownsFactory {
		o.factory = dispatch.NewFactory(append(o.factoryOpts, dispatch.WithLogger(o.logger))...)
	}

	return &Bus{
		listeners:   listener.NewRegistry(),
		targets:     target.NewRegistry(),
		factory:     o.factory,
		ownsFactory: ownsFactory,
		manager:     o.manager,
		scheduler:   o.scheduler,
		logger:      o.logger.With(logger.Component("bus")),
	}
}

// On registers fn as a listener for key. Registering the same function
// twice yields two invocations per emission. A nil listener is rejected
// immediately.
func (b *Bus) On(key string, fn listener.Func) error {
	return b.listeners.Register(key, fn)
}

// RegisterTarget parses and registers a remote target description: a bare
// URL string or a structured map (see target.Parse). Malformed descriptions
// fail here, synchronously.
func (b *Bus) RegisterTarget(raw any) error {
	return b.targets.Register(raw)
}

// RegisterTargets registers several targets, stopping at the first
// malformed description.
func (b *Bus) RegisterTargets(raws ...any) error {
	for _, raw := range raws {
		if err := b.targets.Register(raw); err != nil {
			return err
		}
	}
	return nil
}

// Emit fans the event out to every matching listener and remote target.
// Positional arguments are delivered as the envelope's args; use
// EmitEnvelope to attach kwargs.
//
// Emit never blocks on listener or remote completion and never fails due to
// a downstream listener or dispatch failure; completion and failures are
// observed through Wait. The only error Emit returns is ErrBusClosed.
func (b *Bus) Emit(ctx context.Context, key string, args ...any) error {
	return b.EmitEnvelope(ctx, event.New(key, args...))
}

// EmitEnvelope is Emit for a pre-built envelope. Inbound adapters that
// decode a transport-specific message into (event, args, kwargs) call this.
func (b *Bus) EmitEnvelope(ctx context.Context, env event.Envelope) error {
	if b.closed.Load() {
		return ErrBusClosed
	}

	env = env.Clone()

	listeners := b.listeners.Lookup(env.Event)
	for i, fn := range listeners {
		name := fmt.Sprintf("listener:%s#%d", env.Event, i)
		clone := env.Clone()
		fn := fn
		b.scheduler.Schedule(ctx, name, func(ctx context.Context) error {
			return fn(ctx, clone)
		})
	}

	targets := b.targets.Matching(env.Event)
	for _, t := range targets {
		name := fmt.Sprintf("dispatch:%s:%s", t.Kind, t.Address)

		d, err := b.factory.Create(t)
		if err != nil {
			// A target without a usable dispatcher must not abort the
			// remaining fan-out; record the failure as a failed task so an
			// explicit Wait surfaces it.
			err := fmt.Errorf("create dispatcher for %s target: %w", t.Kind, err)
			b.scheduler.Schedule(ctx, name, func(context.Context) error {
				return err
			})
			continue
		}

		t := t
		clone := env.Clone()
		b.scheduler.Schedule(ctx, name, func(ctx context.Context) error {
			return d.Dispatch(ctx, t, clone)
		})
	}

	b.logger.DebugContext(ctx, "event emitted",
		logger.Event(env.Event),
		slog.Int("listeners", len(listeners)),
		slog.Int("targets", len(targets)))

	return nil
}

// Wait blocks until every outstanding scheduled task completes, returning
// the joined failures accumulated since the previous barrier.
func (b *Bus) Wait(ctx context.Context) error {
	return b.manager.WaitAll(ctx)
}

// Shutdown closes the bus for new emissions, drains outstanding work, and
// releases broker clients the bus's own factory dialed. Idempotent and safe
// with zero outstanding tasks. A factory supplied via WithFactory is left
// open; its owner closes it.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.closed.Store(true)
	err := b.manager.Shutdown(ctx)
	if b.ownsFactory {
		err = errors.Join(err, b.factory.Close())
	}
	return err
}

// Run provides errgroup compatibility: the returned function blocks until
// ctx is cancelled, then shuts the bus down, draining scheduled work under
// the task manager's shutdown timeout.
func (b *Bus) Run(ctx context.Context) func() error {
	drain := b.manager.Run(ctx)
	return func() error {
		<-ctx.Done()
		b.closed.Store(true)
		err := drain()
		if b.ownsFactory {
			err = errors.Join(err, b.factory.Close())
		}
		return err
	}
}

// Reset clears both registries. Used for test isolation and explicit
// teardown; in-flight tasks are unaffected.
func (b *Bus) Reset() {
	b.listeners.Clear()
	b.targets.Clear()
}

// Stats returns the task manager's counters.
func (b *Bus) Stats() task.Stats {
	return b.manager.Stats()
}
