package server

import (
	"net/http"
	"time"

	exportHttp "github.com/clipforge/video-export-backend/internal/exports/delivery/http"
	"github.com/clipforge/video-export-backend/internal/exports/renderer"
	exportRepository "github.com/clipforge/video-export-backend/internal/exports/repository"
	exportUsecase "github.com/clipforge/video-export-backend/internal/exports/usecase"
	"github.com/clipforge/video-export-backend/internal/middleware"
	videoRepository "github.com/clipforge/video-export-backend/internal/videos/repository"
	"github.com/clipforge/video-export-backend/internal/worker"
	"github.com/clipforge/video-export-backend/pkg/utils"
	"github.com/labstack/echo/v4"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	eRepo := exportRepository.NewExportRepo(s.db)
	vRepo := videoRepository.NewVideoRepo(s.db)
	eRedisRepo := exportRepository.NewExportRedisRepo(
		s.redisClient,
		s.cfg.Redis.JobCachePrefix,
		time.Duration(s.cfg.Redis.JobCacheExpire)*time.Second,
	)
	eAWSRepo := exportRepository.NewAwsRepository(s.s3Client, s.preSignClient)

	ffmpegRenderer := renderer.NewFFmpegRenderer(s.cfg, eAWSRepo, s.logger)
	processor := worker.NewProcessor(eRepo, vRepo, eRedisRepo, ffmpegRenderer, s.logger)
	runner := worker.NewRunner(s.cfg, eRepo, processor, s.logger)

	exportUC := exportUsecase.NewExportUseCase(s.cfg, eRepo, vRepo, eRedisRepo, s.logger)
	exportHandlers := exportHttp.NewExportHandler(s.cfg, exportUC, runner, s.logger)

	mw := middleware.NewMiddlewareManager(s.cfg, []string{"*"}, s.logger)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")

	exportHttp.MapExportRoutes(v1, exportHandlers, mw)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
