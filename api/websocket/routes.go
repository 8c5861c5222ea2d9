package websocket

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/explainer/server/internal/explain"
)

// registers the streaming explanation route
func RegisterRoutes(router *gin.Engine, service *explain.Service) {
	router.GET("/ws/explain", ExplainStreamHandler(service))
}
