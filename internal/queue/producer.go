package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"agentcloud.dev/console/internal/model"
)

// IdentityMessage is one identify/reset signal enqueued by the gateway's
// identity bridge and delivered by the worker.
type IdentityMessage struct {
	EventType model.IdentityEventType
	SessionID int64
	AccountID string
	Email     string
	Name      string
	TraceID   string
	Attempt   int
}

type Producer interface {
	Enqueue(ctx context.Context, msg IdentityMessage) error
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

func (p *redisProducer) Enqueue(ctx context.Context, msg IdentityMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"event_type": string(msg.EventType),
		"session_id": msg.SessionID,
		"account_id": msg.AccountID,
		"attempt":    attempt,
	}
	if msg.Email != "" {
		fields["email"] = msg.Email
	}
	if msg.Name != "" {
		fields["name"] = msg.Name
	}
	if msg.TraceID != "" {
		fields["trace_id"] = msg.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue identity event: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued identity event", "event_type", msg.EventType, "session_id", msg.SessionID, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
