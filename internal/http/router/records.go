package router

import (
	"github.com/gin-gonic/gin"

	"samvaad.app/intake/internal/http/handler"
)

func RecordsRouter(v1 *gin.RouterGroup, handler *handler.RecordsHandler) {
	v1.GET("/reports/:userID", handler.GetReport)
	v1.GET("/contractors/:userID", handler.GetContractorProfile)
}
