package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-service/internal/errs"
)

// ErrorHandler is the echo.HTTPErrorHandler for the service.  Every error
// is rendered as an errs.HTTPError; errors of unknown type become a generic
// 500 and only their log line carries the cause.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	httpErr := toHTTPError(err)
	l := GetLogger(c)
	if httpErr.Status >= http.StatusInternalServerError {
		l.Error().Err(err).Int("status", httpErr.Status).Msg("request failed")
	} else {
		l.Debug().Err(err).Int("status", httpErr.Status).Str("error_code", httpErr.Code).Msg(httpErr.Message)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(httpErr.Status)
	} else {
		werr = c.JSON(httpErr.Status, httpErr)
	}
	if werr != nil {
		l.Error().Err(werr).Msg("write error response")
	}
}

func toHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg, ok := echoErr.Message.(string)
		if !ok {
			msg = http.StatusText(echoErr.Code)
		}
		return errs.New(echoErr.Code, msg)
	}
	return errs.NewInternalServerError()
}
