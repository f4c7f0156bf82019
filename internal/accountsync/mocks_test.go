package accountsync_test

import (
	"context"
	"sync"

	"agentcloud.dev/console/internal/accountapi"
	"agentcloud.dev/console/internal/queue"
)

type mockIdentity struct {
	mu         sync.Mutex
	identified []identifyCall
	resets     int

	identifyErr error
	resetErr    error
}

type identifyCall struct {
	accountID string
	email     string
	name      string
}

func (m *mockIdentity) Identify(_ context.Context, accountID, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identified = append(m.identified, identifyCall{accountID: accountID, email: email, name: name})
	return m.identifyErr
}

func (m *mockIdentity) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	return m.resetErr
}

func (m *mockIdentity) calls() []identifyCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]identifyCall(nil), m.identified...)
}

func (m *mockIdentity) resetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

type mockFetcher struct {
	mu      sync.Mutex
	fetches []accountapi.Params
	fetchFn func(ctx context.Context, params accountapi.Params) (*accountapi.Payload, error)
}

func (m *mockFetcher) FetchAccount(ctx context.Context, params accountapi.Params) (*accountapi.Payload, error) {
	m.mu.Lock()
	m.fetches = append(m.fetches, params)
	fn := m.fetchFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, params)
	}
	return &accountapi.Payload{}, nil
}

func (m *mockFetcher) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fetches)
}

func (m *mockFetcher) lastParams() accountapi.Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.fetches) == 0 {
		return accountapi.Params{}
	}
	return m.fetches[len(m.fetches)-1]
}

type mockProducer struct {
	mu       sync.Mutex
	enqueued []queue.IdentityMessage
}

func (m *mockProducer) Enqueue(_ context.Context, msg queue.IdentityMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, msg)
	return nil
}

func (m *mockProducer) Close() error { return nil }

func (m *mockProducer) messages() []queue.IdentityMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]queue.IdentityMessage(nil), m.enqueued...)
}
