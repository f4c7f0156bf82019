// Package route is the router collaborator boundary: the browser owns the
// actual router and reports each path change to the gateway, which fans the
// notification out to subscribers.
package route

import (
	"sync"

	"agentcloud.dev/console/internal/model"
)

// Feed holds the session's current route and notifies subscribers on every
// navigation report.
type Feed struct {
	mu      sync.Mutex
	cur     model.Route
	subs    map[int64]func(model.Route)
	nextSub int64
}

func NewFeed() *Feed {
	return &Feed{subs: map[int64]func(model.Route){}}
}

// Navigate records the new route and notifies subscribers. Called once per
// route change reported by the client.
func (f *Feed) Navigate(r model.Route) {
	f.mu.Lock()
	f.cur = r
	subs := make([]func(model.Route), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(r)
	}
}

func (f *Feed) Current() model.Route {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cur
}

func (f *Feed) Subscribe(fn func(model.Route)) (cancel func()) {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}
