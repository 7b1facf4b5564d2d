package router

import (
	"github.com/gin-gonic/gin"

	"samvaad.app/intake/internal/http/handler"
)

func MessageRouter(router *gin.RouterGroup, handler *handler.MessageHandler) {
	router.POST("", handler.Ingest)
}
