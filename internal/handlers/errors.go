// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/quotebook/quotebook/internal/templates"
	"github.com/labstack/echo/v4"
)

// RenderError renders the error page with a translated message.
func RenderError(c echo.Context, status int, messageID string) error {
	return Render(c, status, templates.View("error", templates.Error{
		Status:    status,
		MessageID: messageID,
	}))
}

// ErrorHandler is the Echo HTTP error handler. Requests below /api/ get a
// JSON body, everything else the error page.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	}

	ctx := c.Request().Context()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request_failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	var renderErr error
	switch {
	case c.Request().Method == http.MethodHead:
		renderErr = c.NoContent(status)
	case strings.HasPrefix(c.Request().URL.Path, "/api/"):
		renderErr = c.JSON(status, map[string]string{"error": message})
	default:
		renderErr = RenderError(c, status, errorMessageID(status))
	}
	if renderErr != nil {
		slog.ErrorContext(ctx, "error_page_failed", "error", renderErr)
	}
}

func errorMessageID(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "error_not_found"
	case status >= 400 && status < 500:
		return "error_bad_request"
	default:
		return "error_generic"
	}
}
