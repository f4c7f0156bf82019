package state

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"agentcloud.dev/console/internal/accountapi"
	"agentcloud.dev/console/internal/model"
	"agentcloud.dev/console/internal/permission"
)

// FailurePolicy decides what happens when an account fetch fails. The
// previous snapshot is kept either way.
type FailurePolicy string

const (
	// FailureLog records the failure. Default.
	FailureLog FailurePolicy = "log"
	// FailureIgnore drops the failure silently, matching the behavior this
	// gateway replaced.
	FailureIgnore FailurePolicy = "ignore"
)

// InitialProps seed the store when a session opens.
type InitialProps struct {
	Account *model.Account
	Props   map[string]any
}

// Store owns the single mutable SharedState snapshot for one session and its
// replacement rules. Reads always see a complete snapshot; writers replace it
// wholesale under the lock.
type Store struct {
	fetcher accountapi.Fetcher
	failure FailurePolicy

	// initial is the base layer of every Refresh merge. Deliberately the
	// original seed, not the prior snapshot: repeated refreshes cannot
	// accumulate stale fields, at the cost that a previously fetched field
	// absent from the new response disappears.
	initial InitialProps

	mu      sync.RWMutex
	cur     SharedState
	subs    map[int64]func(SharedState)
	nextSub int64
}

type Option func(*Store)

func WithFailurePolicy(p FailurePolicy) Option {
	return func(s *Store) {
		if p != "" {
			s.failure = p
		}
	}
}

func New(fetcher accountapi.Fetcher, initial InitialProps, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		failure: FailureLog,
		initial: initial,
		subs:    map[int64]func(SharedState){},
	}
	for _, opt := range opts {
		opt(s)
	}

	orgName, teamName := ResolveTenant(initial.Account)
	s.cur = SharedState{
		Props:       maps.Clone(initial.Props),
		Account:     initial.Account,
		OrgName:     orgName,
		TeamName:    teamName,
		Permissions: permission.New(accountPermissions(initial.Account)),
	}
	if s.cur.Props == nil {
		s.cur.Props = map[string]any{}
	}
	return s
}

// Snapshot returns a read-only copy of the current state.
func (s *Store) Snapshot() SharedState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.clone()
}

// Subscribe registers fn for every snapshot replacement. The returned cancel
// function removes the subscription.
func (s *Store) Subscribe(fn func(SharedState)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Refresh requests fresh account data for the route and returns without
// waiting. Overlapping calls are not de-duplicated or cancelled: results
// apply in completion order, so the last response to arrive wins regardless
// of issue order. That race is accepted; the navigation guard in the sync
// controller makes overlap rare.
func (s *Store) Refresh(ctx context.Context, route model.Route) {
	// The fetch outlives the triggering request; keep trace context, drop
	// cancellation.
	ctx = context.WithoutCancel(ctx)

	go func() {
		payload, err := s.fetcher.FetchAccount(ctx, accountapi.Params{
			ResourceSlug: route.ResourceSlug,
			MemberID:     route.MemberID,
		})
		if err != nil {
			if s.failure == FailureLog {
				slog.ErrorContext(ctx, "account fetch failed, keeping previous snapshot",
					"error", err,
					"resource_slug", route.ResourceSlug,
				)
			}
			return
		}
		s.apply(payload)
	}()
}

// apply replaces the snapshot from a fetch result: the original initial
// properties overlaid with the response, tenant names and permissions
// recomputed from that same response, switching reset.
func (s *Store) apply(payload *accountapi.Payload) {
	props := maps.Clone(s.initial.Props)
	if props == nil {
		props = map[string]any{}
	}
	for key, raw := range payload.Extra {
		props[key] = raw
	}

	next := SharedState{
		Props:       props,
		Account:     payload.Account,
		Switching:   false,
		Permissions: permission.New(accountPermissions(payload.Account)),
	}
	next.OrgName, next.TeamName = ResolveTenant(payload.Account)

	s.replace(next)
}

// SetSwitching replaces the snapshot with its own fields, tenant names
// recomputed from the unchanged account data, and the switching flag set.
// Synchronous; cannot interleave with itself.
func (s *Store) SetSwitching(flag bool) {
	s.mu.Lock()
	next := s.cur.clone()
	next.OrgName, next.TeamName = ResolveTenant(next.Account)
	next.Switching = flag
	s.cur = next
	subs, snap := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

func (s *Store) replace(next SharedState) {
	s.mu.Lock()
	s.cur = next
	subs, snap := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

func (s *Store) subscribersLocked() ([]func(SharedState), SharedState) {
	subs := make([]func(SharedState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs, s.cur.clone()
}

func notify(subs []func(SharedState), snap SharedState) {
	for _, fn := range subs {
		fn(snap)
	}
}

func accountPermissions(account *model.Account) *string {
	if account == nil {
		return nil
	}
	return account.Permissions
}
