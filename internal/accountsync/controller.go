// Package accountsync orchestrates when the account snapshot refreshes and
// what side effects fire as it changes.
package accountsync

import (
	"context"
	"log/slog"
	"sync"

	"agentcloud.dev/console/internal/model"
	"agentcloud.dev/console/internal/route"
	"agentcloud.dev/console/internal/state"
)

// Identity is the analytics identity channel. Implementations deliver inline
// or enqueue for the identity worker.
type Identity interface {
	Identify(ctx context.Context, accountID, email, name string) error
	Reset(ctx context.Context) error
}

// Controller wires the route feed and the state store together and drives the
// identity bridge.
type Controller struct {
	store    *state.Store
	feed     *route.Feed
	identity Identity

	mu       sync.Mutex
	lastName string

	cancelRoute func()
	cancelState func()
}

func NewController(store *state.Store, feed *route.Feed, identity Identity) *Controller {
	return &Controller{
		store:    store,
		feed:     feed,
		identity: identity,
	}
}

// Start subscribes to route changes and snapshot replacements. The seed
// snapshot is evaluated once so an account already present at session open
// is identified immediately.
func (c *Controller) Start(ctx context.Context) {
	c.cancelRoute = c.feed.Subscribe(func(r model.Route) {
		c.onNavigate(ctx, r)
	})
	c.cancelState = c.store.Subscribe(func(snap state.SharedState) {
		c.onSnapshot(ctx, snap)
	})

	c.onSnapshot(ctx, c.store.Snapshot())
}

func (c *Controller) Stop() {
	if c.cancelRoute != nil {
		c.cancelRoute()
	}
	if c.cancelState != nil {
		c.cancelState()
	}
}

// onNavigate fetches only while the snapshot has no account data. Once data
// exists, later navigations do not refetch even if the slugs change; tenant
// switches go through the explicit switch flow instead.
func (c *Controller) onNavigate(ctx context.Context, r model.Route) {
	if c.store.Snapshot().Account != nil {
		return
	}
	c.store.Refresh(ctx, r)
}

// onSnapshot is the identity bridge. It is keyed strictly on the account
// display name: one identify per distinct non-empty value, one reset when the
// name transitions to absent. Refreshes that keep the same name are no-ops.
func (c *Controller) onSnapshot(ctx context.Context, snap state.SharedState) {
	var name string
	if snap.Account != nil {
		name = snap.Account.Name
	}

	c.mu.Lock()
	if name == c.lastName {
		c.mu.Unlock()
		return
	}
	c.lastName = name
	c.mu.Unlock()

	if name == "" {
		if err := c.identity.Reset(ctx); err != nil {
			slog.ErrorContext(ctx, "identity reset failed", "error", err)
		}
		return
	}

	if err := c.identity.Identify(ctx, snap.Account.ID, snap.Account.Email, name); err != nil {
		slog.ErrorContext(ctx, "identity identify failed",
			"error", err,
			"account_id", snap.Account.ID,
		)
	}
}
