package router

import (
	"github.com/gin-gonic/gin"

	"samvaad.app/intake/internal/http/handler"
	"samvaad.app/intake/internal/service"
)

type RouterConfig struct {
	TraceHeaderName string
	IsProduction    bool
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		messageHandler := handler.NewMessageHandler(services.Ingest(), cfg.TraceHeaderName)
		MessageRouter(v1.Group("/messages"), messageHandler)

		recordsHandler := handler.NewRecordsHandler(services.FieldWorkers(), services.Contractors())
		RecordsRouter(v1, recordsHandler)

		conversationHandler := handler.NewConversationHandler(services.Conversations())
		v1.GET("/conversations", conversationHandler.GetHistory)
	}
}
