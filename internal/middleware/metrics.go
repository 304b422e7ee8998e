package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-service/internal/metrics"
)

// Metrics records request count and latency labelled by the matched route
// template, so /theater/1 and /theater/2 share a series.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = StatusOf(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(c.Request().Method, route, strconv.Itoa(status), time.Since(start).Seconds())
			return err
		}
	}
}
