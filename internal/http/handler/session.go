package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agentcloud.dev/console/internal/http/dto"
	"agentcloud.dev/console/internal/model"
	"agentcloud.dev/console/internal/session"
	"agentcloud.dev/console/internal/state"
)

type SessionHandler struct {
	registry *session.Registry
}

func NewSessionHandler(registry *session.Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

func (h *SessionHandler) Open(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := h.registry.Open(ctx, state.InitialProps{
		Account: req.Account,
		Props:   req.Props,
	})

	c.JSON(http.StatusCreated, dto.OpenSessionResponse{
		SessionID: sess.ID,
		State:     dto.ToSnapshotResponse(sess.Snapshot()),
	})
}

func (h *SessionHandler) GetState(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToSnapshotResponse(sess.Snapshot()))
}

// Navigate is the route-change notification from the client. The refresh, if
// the sync controller decides one is needed, runs asynchronously; the
// response reflects the snapshot as of now.
func (h *SessionHandler) Navigate(c *gin.Context) {
	ctx := c.Request.Context()

	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req dto.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess.Navigate(model.Route{
		Path:         req.Path,
		ResourceSlug: req.ResourceSlug,
		MemberID:     req.MemberID,
	})

	c.JSON(http.StatusAccepted, dto.ToSnapshotResponse(sess.Snapshot()))
}

func (h *SessionHandler) SetSwitching(c *gin.Context) {
	ctx := c.Request.Context()

	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req dto.SwitchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess.SetSwitching(*req.Switching)

	c.JSON(http.StatusOK, dto.ToSnapshotResponse(sess.Snapshot()))
}

func (h *SessionHandler) Close(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	if !h.registry.Close(ctx, sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) lookup(c *gin.Context) (*session.Session, bool) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return nil, false
	}

	sess, ok := h.registry.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) sessionID(c *gin.Context) (int64, bool) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return 0, false
	}
	return sessionID, true
}
