// Package session owns the per-browser-session composition: one state store,
// one route feed, one sync controller. A session's snapshot lives only as
// long as the session; nothing is persisted across teardown.
package session

import (
	"context"
	"log/slog"
	"sync"

	"agentcloud.dev/console/common/id"
	"agentcloud.dev/console/common/logger"
	"agentcloud.dev/console/internal/accountapi"
	"agentcloud.dev/console/internal/accountsync"
	"agentcloud.dev/console/internal/model"
	"agentcloud.dev/console/internal/queue"
	"agentcloud.dev/console/internal/route"
	"agentcloud.dev/console/internal/state"
)

// Session is the consumer-facing surface: snapshot, refresh, setSwitching,
// plus the navigation channel feeding the sync controller.
type Session struct {
	ID int64

	store      *state.Store
	feed       *route.Feed
	controller *accountsync.Controller
}

func (s *Session) Snapshot() state.SharedState {
	return s.store.Snapshot()
}

func (s *Session) Refresh(ctx context.Context, r model.Route) {
	s.store.Refresh(ctx, r)
}

func (s *Session) SetSwitching(flag bool) {
	s.store.SetSwitching(flag)
}

// Navigate reports a route change from the client. The sync controller
// decides whether it triggers a refresh.
func (s *Session) Navigate(r model.Route) {
	s.feed.Navigate(r)
}

func (s *Session) close() {
	s.controller.Stop()
}

type Registry struct {
	fetcher  accountapi.Fetcher
	producer queue.Producer
	failure  state.FailurePolicy

	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewRegistry(fetcher accountapi.Fetcher, producer queue.Producer, failure state.FailurePolicy) *Registry {
	return &Registry{
		fetcher:  fetcher,
		producer: producer,
		failure:  failure,
		sessions: map[int64]*Session{},
	}
}

// Open creates a session seeded from the supplied initial properties and
// starts its sync controller.
func (r *Registry) Open(ctx context.Context, initial state.InitialProps) *Session {
	sessionID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: logger.Ptr(sessionID),
		Component: "console.session",
	})

	store := state.New(r.fetcher, initial, state.WithFailurePolicy(r.failure))
	feed := route.NewFeed()
	identity := accountsync.NewQueueIdentity(r.producer, sessionID)
	controller := accountsync.NewController(store, feed, identity)

	session := &Session{
		ID:         sessionID,
		store:      store,
		feed:       feed,
		controller: controller,
	}

	r.mu.Lock()
	r.sessions[sessionID] = session
	r.mu.Unlock()

	controller.Start(ctx)

	slog.InfoContext(ctx, "session opened")
	return session
}

func (r *Registry) Get(sessionID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	return session, ok
}

// Close tears the session down and discards its snapshot.
func (r *Registry) Close(ctx context.Context, sessionID int64) bool {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if !ok {
		return false
	}

	session.close()
	slog.InfoContext(ctx, "session closed", "session_id", sessionID)
	return true
}

// Len reports the number of open sessions, for health reporting.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
