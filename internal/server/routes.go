// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"codeberg.org/quotebook/quotebook/internal/handlers"
	"github.com/labstack/echo/v4"
)

type routes struct {
	pages    *handlers.Handlers
	accounts *handlers.AuthHandlers
	quotes   *handlers.QuoteAPI
}

func setupRoutes(e *echo.Echo, r routes) {
	e.GET("/health", r.pages.Health)
	e.GET("/", r.pages.Home)

	guest := RedirectIfAuthenticated()
	a := e.Group("/auth")
	a.GET("/register", r.accounts.RegisterPage, guest)
	a.POST("/register", r.accounts.Register, guest)
	a.GET("/login", r.accounts.LoginPage, guest)
	a.POST("/login", r.accounts.Login, guest)
	a.POST("/logout", r.accounts.Logout, RequireAuth())
	a.GET("/verify", r.accounts.VerifyEmail)
	a.POST("/verify/resend", r.accounts.ResendVerification)
	a.GET("/forgot-password", r.accounts.ForgotPasswordPage)
	a.POST("/forgot-password", r.accounts.ForgotPassword)
	a.GET("/reset-password", r.accounts.ResetPasswordPage)
	a.POST("/reset-password", r.accounts.ResetPassword)

	api := e.Group("/api/v1")
	api.GET("/quotes", r.quotes.List)
	api.GET("/quotes/search", r.quotes.Search)
	api.GET("/quotes/:id", r.quotes.Get)
}
