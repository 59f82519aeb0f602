package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/clipforge/video-export-backend/internal/config"
	"github.com/clipforge/video-export-backend/internal/exports"
	"github.com/clipforge/video-export-backend/internal/models"
	"github.com/clipforge/video-export-backend/internal/worker"
	"github.com/clipforge/video-export-backend/pkg/logger"
	"github.com/clipforge/video-export-backend/pkg/utils"
	"github.com/labstack/echo/v4"
)

type exportHandler struct {
	cfg      *config.Config
	exportUC exports.UseCase
	runner   *worker.Runner
	logger   logger.Logger
}

func NewExportHandler(cfg *config.Config, exportUC exports.UseCase, runner *worker.Runner, log logger.Logger) exports.Handler {
	return &exportHandler{
		cfg:      cfg,
		exportUC: exportUC,
		runner:   runner,
		logger:   log,
	}
}

func (h *exportHandler) CreateExport() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.CreateExportInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		created, err := h.exportUC.CreateExport(c.Request().Context(), c.Param("video_id"), input)
		if err != nil {
			return h.mapError(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func (h *exportHandler) ListExports() echo.HandlerFunc {
	return func(c echo.Context) error {
		clientID := c.QueryParam("client_id")
		if clientID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "client_id query param is required"})
		}
		limit, err := utils.GetListLimitFromCtx(c, h.cfg.Export.PageSize)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit query param must be an integer"})
		}
		list, err := h.exportUC.ListExports(c.Request().Context(), c.Param("video_id"), clientID, limit)
		if err != nil {
			return h.mapError(c, err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

func (h *exportHandler) GetExport() echo.HandlerFunc {
	return func(c echo.Context) error {
		clientID := c.QueryParam("client_id")
		if clientID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "client_id query param is required"})
		}
		job, err := h.exportUC.GetExport(c.Request().Context(), c.Param("job_id"), clientID)
		if err != nil {
			return h.mapError(c, err)
		}
		return c.JSON(http.StatusOK, job)
	}
}

type processRequest struct {
	Limit int `json:"limit"`
}

func (h *exportHandler) ProcessJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		req := &processRequest{}
		if err := c.Bind(req); err != nil {
			req.Limit = 0
		}
		result, err := h.runner.ProcessPending(c.Request().Context(), req.Limit)
		if err != nil {
			h.logger.Errorf("ProcessJobs - batch error: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to process pending jobs"})
		}
		return c.JSON(http.StatusOK, result)
	}
}

func (h *exportHandler) WorkerStatus() echo.HandlerFunc {
	return func(c echo.Context) error {
		pending, err := h.runner.PendingCount(c.Request().Context())
		if err != nil {
			h.logger.Errorf("WorkerStatus - PendingCount error: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to count pending jobs"})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"pendingJobs": pending,
			"timestamp":   time.Now().UTC(),
		})
	}
}

func (h *exportHandler) mapError(c echo.Context, err error) error {
	var validationErr *exports.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"errors": validationErr.Reasons})
	case errors.Is(err, exports.ErrVideoNotFound), errors.Is(err, exports.ErrJobNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, exports.ErrVideoNotReady):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Errorf("unhandled export error: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
