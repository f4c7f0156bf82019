package router

import (
	"github.com/gin-gonic/gin"

	"agentcloud.dev/console/internal/http/handler"
	"agentcloud.dev/console/internal/session"
)

type RouterConfig struct {
	WebappURL    string
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, registry *session.Registry, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "sessions": registry.Len()})
	})

	v1 := router.Group("/api/v1")
	{
		sessionHandler := handler.NewSessionHandler(registry)
		SessionRouter(v1.Group("/session"), sessionHandler)
	}
}
