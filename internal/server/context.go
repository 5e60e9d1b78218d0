// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"codeberg.org/quotebook/quotebook/internal/appcontext"
	"github.com/labstack/echo/v4"
)

// customContext wraps the Echo context with the application Context.
// The user is filled in later by AuthMiddleware.
func customContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&appcontext.Context{Context: c})
		}
	}
}
