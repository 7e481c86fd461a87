package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/emitkit/emitkit/core/logger"
)

// Func is a unit of scheduled work.
type Func func(ctx context.Context) error

// Scheduler is the scheduling surface the dispatch engine depends on.
// *Manager implements it; tests substitute recording doubles.
type Scheduler interface {
	// Schedule runs fn without blocking the caller, tracking it until it
	// reaches a terminal state. The name identifies the task in logs and
	// aggregated errors.
	Schedule(ctx context.Context, name string, fn Func)
}

// Manager tracks in-flight asynchronous work. Every scheduled task is added
// to the live set before it starts and removed when it finishes, regardless
// of outcome. WaitAll is a full barrier over that set, and Shutdown drains
// it exactly once at end of life.
//
// The live set is the only mutable state shared between the scheduling path,
// completing tasks, and the barrier; all three synchronize on one mutex with
// a condition variable for the barrier.
type Manager struct {
	mu      sync.Mutex
	cond    *sync.Cond
	live    map[uuid.UUID]string
	pending []error
	closed  bool

	shutdownTimeout time.Duration
	logger          *slog.Logger

	scheduled atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// Stats provides observability counters for monitoring and debugging.
type Stats struct {
	Scheduled int64
	Completed int64
	Failed    int64
	Active    int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger configures structured logging for the manager.
// If not set, logging is discarded.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.logger = log.With(logger.Component("task"))
		}
	}
}

// WithShutdownTimeout bounds the drain performed by Run when its context is
// cancelled. Default is 30 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.shutdownTimeout = d
		}
	}
}

// NewManager creates a task manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		live:            make(map[uuid.UUID]string),
		shutdownTimeout: 30 * time.Second,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	m.cond = sync.NewCond(&m.mu)

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Schedule runs fn on its own goroutine, tracked until completion. Work
// scheduled after Shutdown is rejected and logged rather than silently run
// untracked. A nil fn is ignored.
func (m *Manager) Schedule(ctx context.Context, name string, fn Func) {
	if fn == nil {
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.logger.WarnContext(ctx, "task rejected after shutdown", logger.Task(name))
		return
	}
	id := uuid.New()
	m.live[id] = name
	m.mu.Unlock()

	m.scheduled.Add(1)

	go m.run(ctx, id, name, fn)
}

func (m *Manager) run(ctx context.Context, id uuid.UUID, name string, fn Func) {
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn(ctx)
	}()

	m.mu.Lock()
	delete(m.live, id)
	if err != nil {
		m.pending = append(m.pending, fmt.Errorf("task %s: %w", name, err))
	}
	m.cond.Broadcast()
	m.mu.Unlock()

	if err != nil {
		m.failed.Add(1)
		m.logger.ErrorContext(ctx, "task failed",
			logger.Task(name), logger.Error(err), logger.Elapsed(start))
		return
	}

	m.completed.Add(1)
	m.logger.DebugContext(ctx, "task completed",
		logger.Task(name), logger.Elapsed(start))
}

// WaitAll blocks until every tracked task has reached a terminal state.
// The live set is re-read while waiting: tasks scheduled concurrently with
// the wait are also awaited, making this a full barrier rather than a
// snapshot-at-call-time wait. After a successful return the live set is
// empty.
//
// Failures are isolated per task during fan-out but aggregated here: WaitAll
// returns the joined errors of every task that failed since the previous
// barrier, so callers that opt into waiting can detect error conditions.
// If ctx expires first, its error is returned and the failure list is kept
// for the next barrier.
func (m *Manager) WaitAll(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer stop()

	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.live) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.cond.Wait()
	}

	pending := m.pending
	m.pending = nil
	return errors.Join(pending...)
}

// Shutdown drains all outstanding tasks and rejects any scheduled
// afterwards. It is idempotent: repeated calls simply wait on an
// already-empty live set, and draining with zero outstanding tasks returns
// immediately.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		m.logger.Info("task manager draining", slog.Int("outstanding", len(m.live)))
	}
	m.mu.Unlock()

	return m.WaitAll(ctx)
}

// Run provides errgroup compatibility for coordinated lifecycle management:
// the returned function blocks until ctx is cancelled, then drains
// outstanding tasks under the configured shutdown timeout. Processes that do
// not manage the manager explicitly wire this under signal.NotifyContext so
// fire-and-forget dispatches are not dropped at exit.
func (m *Manager) Run(ctx context.Context) func() error {
	return func() error {
		<-ctx.Done()

		drainCtx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
		defer cancel()

		return m.Shutdown(drainCtx)
	}
}

// Len returns the number of currently tracked tasks.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.live)
}

// Stats returns current counters for observability.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	active := len(m.live)
	m.mu.Unlock()

	return Stats{
		Scheduled: m.scheduled.Load(),
		Completed: m.completed.Load(),
		Failed:    m.failed.Load(),
		Active:    active,
	}
}
