package worker_test

import (
	"context"
	"sync"

	"agentcloud.dev/console/internal/analytics"
	"agentcloud.dev/console/internal/model"
	"agentcloud.dev/console/internal/queue"
)

type mockConsumer struct {
	mu       sync.Mutex
	readFn   func(ctx context.Context) ([]queue.Message, error)
	acked    []string
	requeued []string
	dlq      []string
}

func (m *mockConsumer) Read(ctx context.Context) ([]queue.Message, error) {
	if m.readFn != nil {
		return m.readFn(ctx)
	}
	return nil, nil
}

func (m *mockConsumer) Ack(_ context.Context, msg queue.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, msg.ID)
	return nil
}

func (m *mockConsumer) Requeue(_ context.Context, msg queue.Message, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requeued = append(m.requeued, msg.ID)
	return nil
}

func (m *mockConsumer) SendDLQ(_ context.Context, msg queue.Message, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dlq = append(m.dlq, msg.ID)
	return nil
}

func (m *mockConsumer) ackedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}

func (m *mockConsumer) requeuedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requeued...)
}

func (m *mockConsumer) dlqIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.dlq...)
}

type mockIdentifier struct {
	mu         sync.Mutex
	identifyFn func(ctx context.Context, distinctID string, traits analytics.Traits) error
	resetFn    func(ctx context.Context, distinctID string) error
	identified []string
	resets     []string
}

func (m *mockIdentifier) Identify(ctx context.Context, distinctID string, traits analytics.Traits) error {
	m.mu.Lock()
	m.identified = append(m.identified, distinctID)
	fn := m.identifyFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, distinctID, traits)
	}
	return nil
}

func (m *mockIdentifier) Reset(ctx context.Context, distinctID string) error {
	m.mu.Lock()
	m.resets = append(m.resets, distinctID)
	fn := m.resetFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, distinctID)
	}
	return nil
}

type mockEventStore struct {
	mu       sync.Mutex
	created  []*model.IdentityEvent
	createFn func(ctx context.Context, event *model.IdentityEvent) error
}

func (m *mockEventStore) GetByID(context.Context, int64) (*model.IdentityEvent, error) {
	return nil, nil
}

func (m *mockEventStore) Create(ctx context.Context, event *model.IdentityEvent) error {
	m.mu.Lock()
	m.created = append(m.created, event)
	fn := m.createFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, event)
	}
	return nil
}

func (m *mockEventStore) ListBySession(context.Context, int64, int32) ([]model.IdentityEvent, error) {
	return nil, nil
}

func (m *mockEventStore) ListByAccount(context.Context, string, int32) ([]model.IdentityEvent, error) {
	return nil, nil
}

func (m *mockEventStore) rows() []*model.IdentityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.IdentityEvent(nil), m.created...)
}
