package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/theater-service/internal/errs"
)

// LoggerKey is the echo.Context key holding the request-scoped logger.
const LoggerKey = "logger"

// ContextLogger derives a logger carrying request_id, method and path from
// base and stores it in both the echo context and the request context.
// It must run after RequestID.
func ContextLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := base.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Logger()
			c.Set(LoggerKey, &l)
			c.SetRequest(c.Request().WithContext(l.WithContext(c.Request().Context())))
			return next(c)
		}
	}
}

// GetLogger returns the request-scoped logger, falling back to the logger
// attached to the request context (a disabled logger when there is none).
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	return zerolog.Ctx(c.Request().Context())
}

// RequestLogger writes one "API" line per request, at warn level for 4xx
// and error level for 5xx.
func RequestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogMethod:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			status := v.Status
			if v.Error != nil {
				status = StatusOf(v.Error)
			}
			l := GetLogger(c)
			var e *zerolog.Event
			switch {
			case status >= 500:
				e = l.Error().Err(v.Error)
			case status >= 400:
				e = l.Warn()
			default:
				e = l.Info()
			}
			e.Dur("latency", v.Latency).
				Int("status", status).
				Str("uri", v.URI).
				Str("ip", c.RealIP()).
				Msg("API")
			return nil
		},
	})
}

// StatusOf returns the HTTP status the error handler will answer err with.
func StatusOf(err error) int {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return echoErr.Code
	}
	return http.StatusInternalServerError
}
