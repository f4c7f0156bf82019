package router

import (
	"github.com/gin-gonic/gin"

	"agentcloud.dev/console/internal/http/handler"
)

func SessionRouter(rg *gin.RouterGroup, h *handler.SessionHandler) {
	rg.POST("", h.Open)
	rg.GET("/:id/state", h.GetState)
	rg.POST("/:id/navigate", h.Navigate)
	rg.POST("/:id/switching", h.SetSwitching)
	rg.DELETE("/:id", h.Close)
}
