package http

import (
	"github.com/clipforge/video-export-backend/internal/exports"
	"github.com/clipforge/video-export-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

func MapExportRoutes(v1 *echo.Group, h exports.Handler, mw *middleware.MiddlewareManager) {
	v1.POST("/videos/:video_id/exports", h.CreateExport())
	v1.GET("/videos/:video_id/exports", h.ListExports())
	v1.GET("/exports/:job_id", h.GetExport())

	workerGroup := v1.Group("/worker")
	workerGroup.POST("/process", h.ProcessJobs(), mw.WorkerAuthMiddleware())
	workerGroup.GET("/status", h.WorkerStatus())
}
