// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context.
package appcontext

import (
	"codeberg.org/quotebook/quotebook/internal/ctxkeys"
	"codeberg.org/quotebook/quotebook/internal/models"
	"github.com/labstack/echo/v4"
)

// Context is a custom Echo context carrying the authenticated user.
type Context struct {
	echo.Context
	User *models.User // nil if not authenticated
}

// GetUser returns the authenticated user, or nil if not authenticated.
func (c *Context) GetUser() *models.User {
	return c.User
}

// IsAuthenticated returns true if the user is authenticated.
func (c *Context) IsAuthenticated() bool {
	return c.User != nil
}

// UserFrom returns the authenticated user of any Echo context. Plain
// contexts fall back to the user stored in the request context.
func UserFrom(c echo.Context) *models.User {
	if cc, ok := c.(*Context); ok && cc.User != nil {
		return cc.User
	}
	if user, ok := c.Request().Context().Value(ctxkeys.User{}).(*models.User); ok {
		return user
	}
	return nil
}
