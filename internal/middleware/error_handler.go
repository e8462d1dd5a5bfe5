package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// plainTextPaths answer errors as text/plain, everything else gets {"error": msg}
var plainTextPaths = []string{
	"/webhook",
	"/api/payment-success",
}

// CustomErrorHandler creates a custom error handler for Echo
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case error:
			message = m.Error()
		default:
			message = http.StatusText(code)
		}
	}
	if message == "" {
		message = http.StatusText(code)
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	var writeErr error
	switch {
	case c.Request().Method == http.MethodHead:
		writeErr = c.NoContent(code)
	case isPlainText(c.Request().URL.Path):
		writeErr = c.String(code, message)
	default:
		writeErr = c.JSON(code, map[string]string{"error": message})
	}
	if writeErr != nil {
		c.Logger().Error(writeErr)
	}
}

func isPlainText(path string) bool {
	for _, p := range plainTextPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
