// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/quotebook/quotebook/internal/appcontext"
	"codeberg.org/quotebook/quotebook/internal/ctxkeys"
	"codeberg.org/quotebook/quotebook/internal/models"
	"codeberg.org/quotebook/quotebook/internal/repository"
	"codeberg.org/quotebook/quotebook/internal/services/session"
	"github.com/labstack/echo/v4"
)

// UserLoader loads the user named by a session.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware loads the session user into the custom context and the
// request context. Requests without a usable session pass through
// anonymously.
func AuthMiddleware(sessions *session.Manager, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			data, err := sessions.Parse(c.Request())
			if err != nil || data == nil {
				return next(c)
			}

			ctx := c.Request().Context()
			user, err := users.GetUserByID(ctx, data.UserID)
			if err != nil {
				if !errors.Is(err, repository.ErrNotFound) {
					slog.WarnContext(ctx, "session_user_lookup_failed", "user_id", data.UserID, "error", err)
				}
				return next(c)
			}

			c.SetRequest(c.Request().WithContext(context.WithValue(ctx, ctxkeys.User{}, user)))
			if cc, ok := c.(*appcontext.Context); ok {
				cc.User = user
			}
			return next(c)
		}
	}
}

// RequireAuth redirects anonymous users to the login page.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if appcontext.UserFrom(c) == nil {
				return c.Redirect(http.StatusSeeOther, "/auth/login")
			}
			return next(c)
		}
	}
}

// RedirectIfAuthenticated sends signed-in users from the login and
// registration pages to the home page.
func RedirectIfAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if appcontext.UserFrom(c) != nil {
				return c.Redirect(http.StatusSeeOther, "/")
			}
			return next(c)
		}
	}
}
