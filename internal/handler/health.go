package handler // declare the package name; contains HTTP handlers

import (
	"context"      // context bounds the dependency pings
	"database/sql" // sql.DB is pinged for readiness
	"net/http"     // net/http provides status codes and response helpers
	"time"

	"github.com/labstack/echo/v4"  // echo is the web framework used for this project
	"github.com/redis/go-redis/v9" // redis client is pinged when configured

	"github.com/iliyamo/theater-service/internal/errs"
)

// Health is a simple health‑check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// ReadinessHandler reports whether the backing services answer.  Nil
// dependencies (memory store, Redis disabled) are skipped.
type ReadinessHandler struct {
	DB    *sql.DB
	Redis *redis.Client
}

// Ready handles GET /readyz.
func (h *ReadinessHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			return errs.NewServiceUnavailableError("database unavailable")
		}
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			return errs.NewServiceUnavailableError("redis unavailable")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}
