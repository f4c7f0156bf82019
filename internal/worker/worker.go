package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"agentcloud.dev/console/common/id"
	"agentcloud.dev/console/common/logger"
	"agentcloud.dev/console/internal/analytics"
	"agentcloud.dev/console/internal/model"
	"agentcloud.dev/console/internal/queue"
	"agentcloud.dev/console/internal/store"
)

// Consumer mirrors *queue.RedisConsumer - defined here so tests can run
// without Redis.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

type Config struct {
	MaxAttempts int
}

// Worker drains the identity stream: deliver to the analytics collaborator,
// record the audit row, ack. Failed deliveries are retried with an attempt
// counter and land in the DLQ after MaxAttempts.
type Worker struct {
	consumer Consumer
	identity analytics.Identifier
	events   store.IdentityEventStore
	cfg      Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, identity analytics.Identifier, events store.IdentityEventStore, cfg Config) *Worker {
	return &Worker{
		consumer:  consumer,
		identity:  identity,
		events:    events,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "identity worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "identity worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "identity delivery failed",
				"error", err,
				"message_id", msg.ID,
				"event_type", msg.EventType)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage delivers one identity event and records the audit row.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	sc := logger.StartSpanFromTraceID(ctx, msg.TraceID, "console.worker.deliver_identity",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer sc.End()
	ctx = sc.Context()

	eventType := string(msg.EventType)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: logger.Ptr(msg.SessionID),
		AccountID: logger.Ptr(msg.AccountID),
		MessageID: logger.Ptr(msg.ID),
		EventType: logger.Ptr(eventType),
		Component: "console.worker",
	})

	slog.InfoContext(ctx, "delivering identity event", "attempt", msg.Attempt)

	if err := w.deliver(ctx, msg); err != nil {
		sc.RecordError(err)
		return err
	}

	w.audit(ctx, msg, model.IdentityEventStatusDelivered, nil)

	if err := w.consumer.Ack(ctx, msg); err != nil {
		return fmt.Errorf("acking delivered message: %w", err)
	}

	slog.InfoContext(ctx, "identity event delivered")
	return nil
}

func (w *Worker) deliver(ctx context.Context, msg queue.Message) error {
	switch msg.EventType {
	case model.IdentityEventTypeIdentify:
		return w.identity.Identify(ctx, msg.AccountID, analytics.Traits{
			Email: msg.Email,
			Name:  msg.Name,
		})
	case model.IdentityEventTypeReset:
		return w.identity.Reset(ctx, msg.AccountID)
	default:
		return fmt.Errorf("unknown identity event type %q", msg.EventType)
	}
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, cause error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		w.audit(ctx, msg, model.IdentityEventStatusFailed, cause)
		if err := w.consumer.SendDLQ(ctx, msg, cause.Error()); err != nil {
			slog.ErrorContext(ctx, "failed to send message to DLQ",
				"error", err,
				"message_id", msg.ID)
		}
		return
	}

	if err := w.consumer.Requeue(ctx, msg, cause.Error()); err != nil {
		slog.ErrorContext(ctx, "failed to requeue message",
			"error", err,
			"message_id", msg.ID)
	}
}

// audit records the delivery outcome. Audit failures are logged, never fatal:
// losing an audit row must not re-deliver an identity event.
func (w *Worker) audit(ctx context.Context, msg queue.Message, status model.IdentityEventStatus, cause error) {
	event := &model.IdentityEvent{
		ID:        id.New(),
		SessionID: msg.SessionID,
		AccountID: msg.AccountID,
		EventType: string(msg.EventType),
		Status:    string(status),
		Attempt:   msg.Attempt,
	}
	if msg.Email != "" {
		event.Email = logger.Ptr(msg.Email)
	}
	if msg.Name != "" {
		event.Name = logger.Ptr(msg.Name)
	}
	if cause != nil {
		event.Error = logger.Ptr(cause.Error())
	}

	if err := w.events.Create(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to record identity audit row",
			"error", err,
			"message_id", msg.ID)
	}
}
