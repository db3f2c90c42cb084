package admin

import (
	"portfolio-api/internal/logs"
	"portfolio-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, adminService AdminServiceAPI, logService *logs.LogService) {
	adminController := &AdminController{AdminService: adminService, LS: logService}
	logController := &logs.LogController{LogService: logService}

	r.POST("/api/admin/login", adminController.Login)
	r.POST("/api/admin/logout", adminController.Logout)

	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middlewares.AuthMiddleware())
	{
		adminGroup.POST("/logs", logController.GetLogs)
		adminGroup.GET("/cache/export", adminController.ExportCache)
		adminGroup.DELETE("/cache", adminController.PurgeCache)
		adminGroup.POST("/content/reload", adminController.ReloadContent)
		adminGroup.GET("/speech", adminController.ListSpeech)
	}
}
