package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// MessageTask points the worker at one inbound message row. The envelope
// itself stays in Postgres; the stream only carries the reference.
type MessageTask struct {
	MessageID int64
	Channel   string
	SenderID  string
	TraceID   *string
	Attempt   int
}

type Producer interface {
	Enqueue(ctx context.Context, task MessageTask) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, task MessageTask) error {
	attempt := task.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"message_id": task.MessageID,
		"channel":    task.Channel,
		"sender_id":  task.SenderID,
		"attempt":    attempt,
	}

	if task.TraceID != nil && *task.TraceID != "" {
		fields["trace_id"] = *task.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue message: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued inbound message", "message_id", task.MessageID, "channel", task.Channel, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
