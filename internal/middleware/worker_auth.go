package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/clipforge/video-export-backend/pkg/utils"
	"github.com/labstack/echo/v4"
)

const workerSecretHeader = "X-Worker-Secret"

// WorkerAuthMiddleware guards the worker trigger endpoints with a shared
// secret header. When no secret is configured the check is skipped, which is
// only acceptable for local development.
func (mw *MiddlewareManager) WorkerAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			secret := mw.cfg.Worker.TriggerSecret
			if secret == "" {
				mw.logger.Warnf("worker trigger secret not configured, allowing request from %s", utils.GetIPAddress(c))
				return next(c)
			}
			provided := c.Request().Header.Get(workerSecretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				mw.logger.Warnf("worker trigger rejected, RequestID: %s", utils.GetRequestID(c))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			return next(c)
		}
	}
}
