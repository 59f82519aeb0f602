package exports

import "github.com/labstack/echo/v4"

type Handler interface {
	CreateExport() echo.HandlerFunc
	ListExports() echo.HandlerFunc
	GetExport() echo.HandlerFunc
	ProcessJobs() echo.HandlerFunc
	WorkerStatus() echo.HandlerFunc
}
