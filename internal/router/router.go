package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/theater-service/internal/handler" // import the handlers that implement business logic
	"github.com/iliyamo/theater-service/internal/metrics"
)

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, ready *handler.ReadinessHandler, m *metrics.Metrics) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", ready.Ready)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// RegisterTheater mounts the theater resource under /theater.  The given
// middleware (response cache, rate limiter) only wraps these routes.
// Route names let handlers build Location headers with Echo.Reverse.
func RegisterTheater(e *echo.Echo, h *handler.TheaterHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/theater", mws...)
	g.GET("", h.List).Name = handler.RouteListTheaters
	g.GET("/:id", h.Get).Name = handler.RouteGetTheater
	g.POST("", h.Create).Name = handler.RouteCreateTheater
	g.PUT("/:id", h.Update).Name = handler.RouteUpdateTheater
	g.DELETE("/:id", h.Delete).Name = handler.RouteDeleteTheater
}
