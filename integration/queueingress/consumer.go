package queueingress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/emitkit/emitkit/core/event"
	"github.com/emitkit/emitkit/core/logger"
)

// Emitter is the bus surface the consumer needs. *bus.Bus satisfies it.
type Emitter interface {
	EmitEnvelope(ctx context.Context, env event.Envelope) error
}

// StreamClient is the broker surface the consumer needs.
// *redis.Client satisfies it.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// Config holds consumer settings with environment variable mapping.
type Config struct {
	Stream    string        `env:"QUEUE_INGRESS_STREAM" envDefault:"default"`
	Group     string        `env:"QUEUE_INGRESS_GROUP" envDefault:"emitkit"`
	Consumers int           `env:"QUEUE_INGRESS_CONSUMERS" envDefault:"1"`
	BatchSize int64         `env:"QUEUE_INGRESS_BATCH_SIZE" envDefault:"10"`
	Block     time.Duration `env:"QUEUE_INGRESS_BLOCK" envDefault:"1s"`
}

// Consumer reads remote task invocations from a broker stream and re-emits
// them as local events. It is the inbound counterpart of the queue
// dispatcher: what one process enqueues, another fans out to its own
// listeners.
//
// Messages are acknowledged after the emission is scheduled. Delivery stays
// best-effort end to end: a message that cannot be decoded is acknowledged
// and dropped with a log record rather than redelivered forever.
type Consumer struct {
	client StreamClient
	bus    Emitter

	stream    string
	group     string
	name      string
	consumers int
	batchSize int64
	block     time.Duration

	logger *slog.Logger
}

// Option configures a Consumer.
type Option func(*Consumer)

// WithStream sets the stream to consume. Default "default".
func WithStream(stream string) Option {
	return func(c *Consumer) {
		if stream != "" {
			c.stream = stream
		}
	}
}

// WithGroup sets the consumer group name. Default "emitkit".
func WithGroup(group string) Option {
	return func(c *Consumer) {
		if group != "" {
			c.group = group
		}
	}
}

// WithConsumers sets how many consumer goroutines read the stream.
// Default 1.
func WithConsumers(n int) Option {
	return func(c *Consumer) {
		if n > 0 {
			c.consumers = n
		}
	}
}

// WithBatchSize sets the per-read message count. Default 10.
func WithBatchSize(n int64) Option {
	return func(c *Consumer) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithBlock sets the blocking interval of each stream read. Default 1s.
func WithBlock(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.block = d
		}
	}
}

// WithLogger configures structured logging for the consumer.
func WithLogger(log *slog.Logger) Option {
	return func(c *Consumer) {
		if log != nil {
			c.logger = log.With(logger.Component("queueingress"))
		}
	}
}

// New creates a consumer bound to the given broker client and bus.
func New(client StreamClient, bus Emitter, opts ...Option) (*Consumer, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if bus == nil {
		return nil, ErrNilEmitter
	}

	c := &Consumer{
		client:    client,
		bus:       bus,
		stream:    "default",
		group:     "emitkit",
		name:      uuid.NewString(),
		consumers: 1,
		batchSize: 10,
		block:     time.Second,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewFromConfig creates a consumer from configuration. Additional options
// override config values.
func NewFromConfig(cfg Config, client StreamClient, bus Emitter, opts ...Option) (*Consumer, error) {
	configOpts := []Option{
		WithStream(cfg.Stream),
		WithGroup(cfg.Group),
		WithConsumers(cfg.Consumers),
		WithBatchSize(cfg.BatchSize),
		WithBlock(cfg.Block),
	}
	return New(client, bus, append(configOpts, opts...)...)
}

// Run provides errgroup compatibility: the returned function creates the
// consumer group, starts the configured number of consumer goroutines, and
// blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) func() error {
	return func() error {
		if err := c.ensureGroup(ctx); err != nil {
			return err
		}

		c.logger.Info("queue ingress started",
			slog.String("stream", c.stream),
			slog.String("group", c.group),
			slog.Int("consumers", c.consumers))

		g, ctx := errgroup.WithContext(ctx)
		for i := 0; i < c.consumers; i++ {
			name := fmt.Sprintf("%s-%d", c.name, i)
			g.Go(func() error {
				return c.consume(ctx, name)
			})
		}
		return g.Wait()
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s on %s: %w", c.group, c.stream, err)
	}
	return nil
}

func (c *Consumer) consume(ctx context.Context, name string) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: name,
			Streams:  []string{c.stream, ">"},
			Count:    c.batchSize,
			Block:    c.block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}

			c.logger.ErrorContext(ctx, "stream read failed",
				slog.String("stream", c.stream), logger.Error(err))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.block):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	env, err := DecodeMessage(msg)
	if err != nil {
		// Poison message: acknowledge and drop, or it is redelivered forever.
		c.logger.WarnContext(ctx, "dropping malformed message",
			slog.String("message_id", msg.ID), logger.Error(err))
		c.ack(ctx, msg.ID)
		return
	}

	if err := c.bus.EmitEnvelope(ctx, env); err != nil {
		c.logger.ErrorContext(ctx, "emit failed",
			slog.String("message_id", msg.ID), logger.Event(env.Event), logger.Error(err))
		return
	}

	c.ack(ctx, msg.ID)

	c.logger.DebugContext(ctx, "message emitted",
		slog.String("message_id", msg.ID), logger.Event(env.Event))
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, c.stream, c.group, id).Err(); err != nil {
		c.logger.ErrorContext(ctx, "ack failed",
			slog.String("message_id", id), logger.Error(err))
	}
}
