package utils

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ClampLimit bounds a requested result-set size to (0, max]. Zero, negative
// and oversized requests all collapse to max.
func ClampLimit(requested, max int) int {
	if requested <= 0 || requested > max {
		return max
	}
	return requested
}

// GetListLimitFromCtx reads the optional limit query param and clamps it to
// max. An absent param means the caller wants the full page.
func GetListLimitFromCtx(c echo.Context, max int) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return max, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid limit: %w", err)
	}
	return ClampLimit(limit, max), nil
}
