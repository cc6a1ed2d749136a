package adminapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/talkincode/toughcrm/internal/repository"
	"go.uber.org/zap"
)

// maxBodyBytes bounds operation payloads
const maxBodyBytes = 4 << 20

// NewServer exposes the registry over HTTP:
//
//	POST /api/v1/ops/:name   run an operation with the JSON body as payload
//	GET  /api/v1/ops         list operation names
//	GET  /api/v1/healthz     liveness
//	GET  /api/v1/crm/...     read-only customers, products, orders and report
func NewServer(store repository.Store, registry Registry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("4M"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/healthz", func(c echo.Context) error {
		return ok(c, map[string]string{"status": "ok"})
	})
	api.GET("/ops", func(c echo.Context) error {
		return ok(c, registry.Names())
	})
	api.POST("/ops/:name", func(c echo.Context) error {
		name := c.Param("name")
		handler, found := registry[name]
		if !found {
			return fail(c, http.StatusNotFound, "UNKNOWN_OPERATION", "Unknown operation: "+name, nil)
		}
		payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read request body", err.Error())
		}
		result, err := handler(c.Request().Context(), store, payload)
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, result)
	})
	registerResourceRoutes(api, store)
	return e
}
