package state_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agentcloud.dev/console/internal/accountapi"
	"agentcloud.dev/console/internal/model"
	"agentcloud.dev/console/internal/permission"
	"agentcloud.dev/console/internal/state"
)

type stubFetcher struct {
	mu      sync.Mutex
	fetchFn func(ctx context.Context, params accountapi.Params) (*accountapi.Payload, error)
}

func (f *stubFetcher) FetchAccount(ctx context.Context, params accountapi.Params) (*accountapi.Payload, error) {
	f.mu.Lock()
	fn := f.fetchFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, params)
	}
	return &accountapi.Payload{}, nil
}

func (f *stubFetcher) set(fn func(ctx context.Context, params accountapi.Params) (*accountapi.Payload, error)) {
	f.mu.Lock()
	f.fetchFn = fn
	f.mu.Unlock()
}

func accountFixture(name string, caps ...permission.Capability) *model.Account {
	encoded := permission.FromCapabilities(caps...).Encode()
	return &model.Account{
		ID:          "acc-" + name,
		Name:        name,
		Email:       name + "@example.com",
		CurrentOrg:  "org-1",
		CurrentTeam: "team-1",
		Orgs: []model.Org{
			{ID: "org-1", Name: "Acme", Teams: []model.Team{
				{ID: "team-1", Name: "Platform"},
			}},
		},
		Permissions: &encoded,
	}
}

var _ = Describe("Store", func() {
	var fetcher *stubFetcher

	BeforeEach(func() {
		fetcher = &stubFetcher{}
	})

	Describe("seed snapshot", func() {
		It("resolves tenant names and permissions from the initial account", func() {
			account := accountFixture("jo", permission.CapCreateApp)
			s := state.New(fetcher, state.InitialProps{
				Account: account,
				Props:   map[string]any{"theme": "dark"},
			})

			snap := s.Snapshot()
			Expect(snap.Account).To(Equal(account))
			Expect(snap.OrgName).To(Equal("Acme"))
			Expect(snap.TeamName).To(Equal("Platform"))
			Expect(snap.Switching).To(BeFalse())
			Expect(snap.Permissions.Can(permission.CapCreateApp)).To(BeTrue())
			Expect(snap.Permissions.Can(permission.CapRoot)).To(BeFalse())
			Expect(snap.Props).To(HaveKeyWithValue("theme", "dark"))
		})

		It("shows placeholders when no account was seeded", func() {
			s := state.New(fetcher, state.InitialProps{})

			snap := s.Snapshot()
			Expect(snap.Account).To(BeNil())
			Expect(snap.OrgName).To(Equal(state.NamePlaceholder))
			Expect(snap.TeamName).To(Equal(state.NamePlaceholder))
			Expect(snap.Permissions.Capabilities()).To(BeEmpty())
		})

		It("returns snapshots detached from the store", func() {
			s := state.New(fetcher, state.InitialProps{
				Props: map[string]any{"theme": "dark"},
			})

			snap := s.Snapshot()
			snap.Props["theme"] = "mutated"

			Expect(s.Snapshot().Props).To(HaveKeyWithValue("theme", "dark"))
		})
	})

	Describe("Refresh", func() {
		It("replaces the snapshot wholesale from the fetch result", func() {
			account := accountFixture("jo", permission.CapOrgAdmin)
			fetcher.set(func(_ context.Context, params accountapi.Params) (*accountapi.Payload, error) {
				Expect(params.ResourceSlug).To(Equal("acme"))
				Expect(params.MemberID).To(Equal("m-1"))
				return &accountapi.Payload{
					Account: account,
					Extra:   map[string]json.RawMessage{"flags": json.RawMessage(`{"beta":true}`)},
				}, nil
			})

			s := state.New(fetcher, state.InitialProps{Props: map[string]any{"theme": "dark"}})
			s.Refresh(context.Background(), model.Route{Path: "/a", ResourceSlug: "acme", MemberID: "m-1"})

			Eventually(func() *model.Account {
				return s.Snapshot().Account
			}).Should(Equal(account))

			snap := s.Snapshot()
			Expect(snap.OrgName).To(Equal("Acme"))
			Expect(snap.TeamName).To(Equal("Platform"))
			Expect(snap.Permissions.Can(permission.CapOrgAdmin)).To(BeTrue())
			Expect(snap.Props).To(HaveKeyWithValue("theme", "dark"))
			Expect(snap.Props).To(HaveKey("flags"))
		})

		It("merges over the original seed, dropping fields from earlier refreshes", func() {
			first := &accountapi.Payload{
				Account: accountFixture("jo"),
				Extra:   map[string]json.RawMessage{"banner": json.RawMessage(`"welcome"`)},
			}
			second := &accountapi.Payload{
				Account: accountFixture("jo"),
				Extra:   map[string]json.RawMessage{"flags": json.RawMessage(`{}`)},
			}

			fetcher.set(func(context.Context, accountapi.Params) (*accountapi.Payload, error) {
				return first, nil
			})
			s := state.New(fetcher, state.InitialProps{Props: map[string]any{"theme": "dark"}})

			s.Refresh(context.Background(), model.Route{Path: "/a"})
			Eventually(func() map[string]any {
				return s.Snapshot().Props
			}).Should(HaveKey("banner"))

			fetcher.set(func(context.Context, accountapi.Params) (*accountapi.Payload, error) {
				return second, nil
			})
			s.Refresh(context.Background(), model.Route{Path: "/b"})

			Eventually(func() map[string]any {
				return s.Snapshot().Props
			}).Should(HaveKey("flags"))

			snap := s.Snapshot()
			Expect(snap.Props).NotTo(HaveKey("banner"), "fields from a prior refresh must not accumulate")
			Expect(snap.Props).To(HaveKeyWithValue("theme", "dark"), "seed props are the base of every merge")
		})

		It("clears the switching flag on replacement", func() {
			fetcher.set(func(context.Context, accountapi.Params) (*accountapi.Payload, error) {
				return &accountapi.Payload{Account: accountFixture("jo")}, nil
			})
			s := state.New(fetcher, state.InitialProps{})
			s.SetSwitching(true)
			Expect(s.Snapshot().Switching).To(BeTrue())

			s.Refresh(context.Background(), model.Route{Path: "/a"})

			Eventually(func() bool {
				return s.Snapshot().Switching
			}).Should(BeFalse())
		})

		It("keeps the previous snapshot when the fetch fails", func() {
			account := accountFixture("jo")
			fetcher.set(func(context.Context, accountapi.Params) (*accountapi.Payload, error) {
				return nil, errors.New("upstream down")
			})
			s := state.New(fetcher, state.InitialProps{Account: account})

			s.Refresh(context.Background(), model.Route{Path: "/a"})

			Consistently(func() *model.Account {
				return s.Snapshot().Account
			}).Should(Equal(account))
		})

		It("applies overlapping refreshes in completion order", func() {
			slowRelease := make(chan struct{})
			slow := &accountapi.Payload{Account: accountFixture("slow")}
			fast := &accountapi.Payload{Account: accountFixture("fast")}

			fetcher.set(func(_ context.Context, params accountapi.Params) (*accountapi.Payload, error) {
				if params.ResourceSlug == "slow" {
					<-slowRelease
					return slow, nil
				}
				return fast, nil
			})

			s := state.New(fetcher, state.InitialProps{})

			s.Refresh(context.Background(), model.Route{Path: "/slow", ResourceSlug: "slow"})
			s.Refresh(context.Background(), model.Route{Path: "/fast", ResourceSlug: "fast"})

			Eventually(func() *model.Account {
				return s.Snapshot().Account
			}).Should(Equal(fast.Account))

			// The earlier request completes last and overwrites the fresher one.
			close(slowRelease)
			Eventually(func() *model.Account {
				return s.Snapshot().Account
			}).Should(Equal(slow.Account))
		})
	})

	Describe("SetSwitching", func() {
		It("sets the flag without touching account data", func() {
			account := accountFixture("jo", permission.CapEditOrg)
			s := state.New(fetcher, state.InitialProps{Account: account})

			s.SetSwitching(true)

			snap := s.Snapshot()
			Expect(snap.Switching).To(BeTrue())
			Expect(snap.Account).To(Equal(account))
			Expect(snap.OrgName).To(Equal("Acme"))
			Expect(snap.Permissions.Can(permission.CapEditOrg)).To(BeTrue())

			s.SetSwitching(false)
			Expect(s.Snapshot().Switching).To(BeFalse())
		})
	})

	Describe("Subscribe", func() {
		It("notifies on every replacement until cancelled", func() {
			fetcher.set(func(context.Context, accountapi.Params) (*accountapi.Payload, error) {
				return &accountapi.Payload{Account: accountFixture("jo")}, nil
			})
			s := state.New(fetcher, state.InitialProps{})

			var mu sync.Mutex
			var seen []state.SharedState
			cancel := s.Subscribe(func(snap state.SharedState) {
				mu.Lock()
				seen = append(seen, snap)
				mu.Unlock()
			})

			s.SetSwitching(true)
			Eventually(func() int {
				mu.Lock()
				defer mu.Unlock()
				return len(seen)
			}).Should(Equal(1))

			mu.Lock()
			Expect(seen[0].Switching).To(BeTrue())
			mu.Unlock()

			cancel()
			s.SetSwitching(false)
			Consistently(func() int {
				mu.Lock()
				defer mu.Unlock()
				return len(seen)
			}).Should(Equal(1))
		})
	})
})
