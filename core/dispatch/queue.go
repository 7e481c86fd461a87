package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/emitkit/emitkit/core/event"
	"github.com/emitkit/emitkit/core/logger"
	"github.com/emitkit/emitkit/core/target"
)

// XAdder is the broker surface the queue dispatcher needs.
// *redis.Client satisfies it.
type XAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Message field names used on the broker stream.
const (
	FieldTask    = "task"
	FieldID      = "id"
	FieldPayload = "payload"
)

// TaskCall is the serialized remote invocation: the event key leads the
// positional arguments, mirroring the remote function's calling convention
// fn(event, *args, **kwargs).
type TaskCall struct {
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

// QueueDispatcher submits named remote task invocations to a broker stream.
// Each dispatch appends one entry to the stream named by the target's
// QueueName, invoking the target's FunctionName on the consumer side.
type QueueDispatcher struct {
	client XAdder
	logger *slog.Logger
}

// QueueOption configures a QueueDispatcher.
type QueueOption func(*QueueDispatcher)

// WithQueueLogger configures structured logging for the dispatcher.
func WithQueueLogger(log *slog.Logger) QueueOption {
	return func(d *QueueDispatcher) {
		if log != nil {
			d.logger = log.With(logger.Component("dispatch.queue"))
		}
	}
}

// NewQueueDispatcher creates a queue dispatcher. Construction fails
// immediately when no broker client is configured, so a misdeployed queue
// target is caught before any dispatch is attempted.
func NewQueueDispatcher(client XAdder, opts ...QueueOption) (*QueueDispatcher, error) {
	if client == nil {
		return nil, ErrQueueClientNil
	}

	d := &QueueDispatcher{
		client: client,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Dispatch appends the invocation to the target's stream.
func (d *QueueDispatcher) Dispatch(ctx context.Context, t target.Target, env event.Envelope) error {
	env = env.Clone()

	payload, err := json.Marshal(TaskCall{
		Args:   append([]any{env.Event}, env.Args...),
		Kwargs: env.Kwargs,
	})
	if err != nil {
		return fmt.Errorf("marshal task call: %w", err)
	}

	id, err := d.client.XAdd(ctx, &redis.XAddArgs{
		Stream: t.QueueName,
		Values: map[string]any{
			FieldTask:    t.FunctionName,
			FieldID:      uuid.NewString(),
			FieldPayload: string(payload),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("enqueue %s on %s: %w", t.FunctionName, t.QueueName, err)
	}

	d.logger.DebugContext(ctx, "task enqueued",
		logger.Event(env.Event),
		slog.String("queue", t.QueueName),
		slog.String("function", t.FunctionName),
		slog.String("message_id", id))

	return nil
}
