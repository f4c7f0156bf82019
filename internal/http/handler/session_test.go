package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agentcloud.dev/console/internal/http/handler"
	"agentcloud.dev/console/internal/model"
	"agentcloud.dev/console/internal/session"
	"agentcloud.dev/console/internal/state"
)

var _ = Describe("SessionHandler", func() {
	var (
		router   *gin.Engine
		fetcher  *mockFetcher
		producer *mockProducer
		registry *session.Registry
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		fetcher = &mockFetcher{}
		producer = &mockProducer{}
		registry = session.NewRegistry(fetcher, producer, state.FailureLog)

		h := handler.NewSessionHandler(registry)
		router = gin.New()
		router.POST("/sessions", h.Open)
		router.GET("/sessions/:id/state", h.GetState)
		router.POST("/sessions/:id/navigate", h.Navigate)
		router.POST("/sessions/:id/switching", h.SetSwitching)
		router.DELETE("/sessions/:id", h.Close)
	})

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	openSession := func(body map[string]any) (string, map[string]any) {
		w := do(http.MethodPost, "/sessions", body)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var resp struct {
			SessionID string         `json:"session_id"`
			State     map[string]any `json:"state"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.SessionID).NotTo(BeEmpty())
		return resp.SessionID, resp.State
	}

	Describe("Open", func() {
		It("creates a session seeded with account and props", func() {
			_, snap := openSession(map[string]any{
				"account": map[string]any{
					"id":          "acc-1",
					"name":        "jo",
					"email":       "jo@example.com",
					"currentOrg":  "org-1",
					"currentTeam": "team-1",
					"orgs": []map[string]any{
						{"id": "org-1", "name": "Acme", "teams": []map[string]any{
							{"id": "team-1", "name": "Platform"},
						}},
					},
				},
				"props": map[string]any{"theme": "dark"},
			})

			Expect(snap["org_name"]).To(Equal("Acme"))
			Expect(snap["team_name"]).To(Equal("Platform"))
			Expect(snap["switching"]).To(BeFalse())
			Expect(snap["props"]).To(HaveKeyWithValue("theme", "dark"))
			Expect(registry.Len()).To(Equal(1))
		})

		It("creates an empty session showing placeholders", func() {
			_, snap := openSession(map[string]any{})

			Expect(snap["org_name"]).To(Equal(state.NamePlaceholder))
			Expect(snap["team_name"]).To(Equal(state.NamePlaceholder))
			Expect(snap).NotTo(HaveKey("account"))
		})

		It("enqueues an identify for a seeded account", func() {
			openSession(map[string]any{
				"account": map[string]any{"id": "acc-1", "name": "jo", "email": "jo@example.com"},
			})

			Eventually(producer.messages).Should(HaveLen(1))
			msg := producer.messages()[0]
			Expect(msg.EventType).To(Equal(model.IdentityEventTypeIdentify))
			Expect(msg.AccountID).To(Equal("acc-1"))
		})

		It("returns 400 on malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(`{`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GetState", func() {
		It("returns the current snapshot", func() {
			sessionID, _ := openSession(map[string]any{"props": map[string]any{"theme": "dark"}})

			w := do(http.MethodGet, "/sessions/"+sessionID+"/state", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var snap map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &snap)).To(Succeed())
			Expect(snap["props"]).To(HaveKeyWithValue("theme", "dark"))
		})

		It("returns 404 for an unknown session", func() {
			w := do(http.MethodGet, "/sessions/12345/state", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a non-numeric session id", func() {
			w := do(http.MethodGet, "/sessions/abc/state", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Navigate", func() {
		It("accepts the report and triggers a fetch for an empty session", func() {
			sessionID, _ := openSession(map[string]any{})

			w := do(http.MethodPost, "/sessions/"+sessionID+"/navigate", map[string]any{
				"path":         "/apps",
				"resourceSlug": "acme",
			})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Eventually(fetcher.fetchCount).Should(Equal(1))
		})

		It("does not fetch when account data already exists", func() {
			sessionID, _ := openSession(map[string]any{
				"account": map[string]any{"id": "acc-1", "name": "jo"},
			})

			w := do(http.MethodPost, "/sessions/"+sessionID+"/navigate", map[string]any{
				"path": "/apps",
			})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Consistently(fetcher.fetchCount).Should(BeZero())
		})

		It("returns 400 when the path is missing", func() {
			sessionID, _ := openSession(map[string]any{})

			w := do(http.MethodPost, "/sessions/"+sessionID+"/navigate", map[string]any{
				"resourceSlug": "acme",
			})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("SetSwitching", func() {
		It("flips the switching flag synchronously", func() {
			sessionID, _ := openSession(map[string]any{})

			w := do(http.MethodPost, "/sessions/"+sessionID+"/switching", map[string]any{"switching": true})
			Expect(w.Code).To(Equal(http.StatusOK))

			var snap map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &snap)).To(Succeed())
			Expect(snap["switching"]).To(BeTrue())
		})

		It("returns 400 when the flag is absent", func() {
			sessionID, _ := openSession(map[string]any{})

			w := do(http.MethodPost, "/sessions/"+sessionID+"/switching", map[string]any{})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Close", func() {
		It("tears the session down", func() {
			sessionID, _ := openSession(map[string]any{})

			w := do(http.MethodDelete, "/sessions/"+sessionID, nil)
			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(registry.Len()).To(BeZero())

			w = do(http.MethodDelete, "/sessions/"+sessionID, nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
