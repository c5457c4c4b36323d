// Package respond renders the flat {success, message?, ...payload} envelope
// used by every API endpoint.
package respond

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// OK writes a success envelope with the given payload fields merged in at
// the top level.
func OK(c echo.Context, status int, payload echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

// Message writes a success envelope carrying only a message.
func Message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": true, "message": msg})
}

// Error writes a failure envelope with a human-readable message.
func Error(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}

// HTTPErrorHandler converts errors that escape handlers, including
// echo.HTTPError values raised by middleware, into the same envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	_ = Error(c, status, msg)
}
