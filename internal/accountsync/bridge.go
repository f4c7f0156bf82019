package accountsync

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"agentcloud.dev/console/internal/model"
	"agentcloud.dev/console/internal/queue"
)

// QueueIdentity implements Identity by enqueueing on the identity stream.
// The worker delivers to the analytics vendor, so a vendor outage never
// blocks the request path.
type QueueIdentity struct {
	producer  queue.Producer
	sessionID int64

	mu            sync.Mutex
	lastAccountID string
}

func NewQueueIdentity(producer queue.Producer, sessionID int64) *QueueIdentity {
	return &QueueIdentity{producer: producer, sessionID: sessionID}
}

func (q *QueueIdentity) Identify(ctx context.Context, accountID, email, name string) error {
	q.mu.Lock()
	q.lastAccountID = accountID
	q.mu.Unlock()

	return q.producer.Enqueue(ctx, queue.IdentityMessage{
		EventType: model.IdentityEventTypeIdentify,
		SessionID: q.sessionID,
		AccountID: accountID,
		Email:     email,
		Name:      name,
		TraceID:   traceIDFrom(ctx),
	})
}

// Reset carries the last identified account so the analytics side knows whose
// identity to drop.
func (q *QueueIdentity) Reset(ctx context.Context) error {
	q.mu.Lock()
	accountID := q.lastAccountID
	q.lastAccountID = ""
	q.mu.Unlock()

	return q.producer.Enqueue(ctx, queue.IdentityMessage{
		EventType: model.IdentityEventTypeReset,
		SessionID: q.sessionID,
		AccountID: accountID,
		TraceID:   traceIDFrom(ctx),
	})
}

func traceIDFrom(ctx context.Context) string {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}
