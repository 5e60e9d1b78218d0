// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"net/http"

	"codeberg.org/quotebook/quotebook/internal/models"
	"codeberg.org/quotebook/quotebook/internal/services/auth"
	"codeberg.org/quotebook/quotebook/internal/templates"
	"github.com/labstack/echo/v4"
)

// Accounts is the part of the auth service used by the account pages.
type Accounts interface {
	Register(ctx context.Context, params auth.RegisterParams) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	ResendVerification(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, params auth.ResetPasswordParams) error
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
	PasswordValidator() *auth.PasswordValidator
}

// Sessions issues and clears the login cookie.
type Sessions interface {
	Create(userID, username string) (*http.Cookie, error)
	Clear() *http.Cookie
}

// AuthHandlers contains handlers for registration, login, email
// verification and password reset.
type AuthHandlers struct {
	accounts Accounts
	sessions Sessions
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(accounts Accounts, sessions Sessions) *AuthHandlers {
	return &AuthHandlers{
		accounts: accounts,
		sessions: sessions,
	}
}

// RegisterPage renders the registration page.
func (h *AuthHandlers) RegisterPage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.View("register", h.passwordForm(nil)))
}

// Register creates an unverified account and tells the user to check
// their inbox.
func (h *AuthHandlers) Register(c echo.Context) error {
	form := h.passwordForm(formValues(c, "email", "username"))

	user, err := h.accounts.Register(c.Request().Context(), auth.RegisterParams{
		Email:           c.FormValue("email"),
		Username:        c.FormValue("username"),
		Password:        c.FormValue("password"),
		ConfirmPassword: c.FormValue("confirm_password"),
	})

	var verr *auth.ValidationError
	switch {
	case err == nil:
		return Render(c, http.StatusOK, templates.View("check_email", templates.CheckEmail{Email: user.Email}))
	case errors.Is(err, auth.ErrDelivery) && user != nil:
		return Render(c, http.StatusOK, templates.View("check_email", templates.CheckEmail{
			Email:          user.Email,
			DeliveryFailed: true,
		}))
	case errors.As(err, &verr):
		form.Errors = verr.ByField()
		return Render(c, http.StatusUnprocessableEntity, templates.View("register", form))
	case errors.Is(err, auth.ErrDuplicateAccount):
		form.Message = "error_account_exists"
		return Render(c, http.StatusConflict, templates.View("register", form))
	default:
		return err
	}
}

// LoginPage renders the login page.
func (h *AuthHandlers) LoginPage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.View("login", templates.Form{}))
}

// Login checks the credentials and starts a session.
func (h *AuthHandlers) Login(c echo.Context) error {
	form := templates.Form{Values: formValues(c, "email")}

	user, err := h.accounts.Login(c.Request().Context(), c.FormValue("email"), c.FormValue("password"))
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		form.Message = "error_invalid_credentials"
		return Render(c, http.StatusUnauthorized, templates.View("login", form))
	case errors.Is(err, auth.ErrAccountNotVerified):
		form.Message = "error_not_verified"
		return Render(c, http.StatusForbidden, templates.View("login", form))
	case err != nil:
		return err
	}

	cookie, err := h.sessions.Create(user.ID, user.Username)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout clears the session cookie.
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.Redirect(http.StatusSeeOther, "/")
}

// VerifyEmail activates the account named by the token in the link.
func (h *AuthHandlers) VerifyEmail(c echo.Context) error {
	token := c.QueryParam("token")

	if _, err := h.accounts.VerifyEmail(c.Request().Context(), token); err != nil {
		return h.tokenProblem(c, err, token, true)
	}

	return Render(c, http.StatusOK, templates.View("verified", nil))
}

// ResendVerification mails a fresh verification link for an expired one.
func (h *AuthHandlers) ResendVerification(c echo.Context) error {
	token := c.FormValue("token")

	err := h.accounts.ResendVerification(c.Request().Context(), token)
	switch {
	case errors.Is(err, auth.ErrDelivery):
		return Render(c, http.StatusOK, templates.View("verification", templates.TokenProblem{
			ReasonID:     "verification_expired",
			Token:        token,
			CanResend:    true,
			ResendFailed: true,
		}))
	case auth.IsTokenError(err):
		return h.tokenProblem(c, err, token, true)
	case err != nil && !errors.Is(err, auth.ErrAccountNotFound):
		return err
	}

	return Render(c, http.StatusOK, templates.View("verification", templates.TokenProblem{
		ReasonID:   "verification_expired",
		ResendDone: true,
	}))
}

// ForgotPasswordPage renders the form requesting a reset link.
func (h *AuthHandlers) ForgotPasswordPage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.View("forgot_password", templates.Form{}))
}

// ForgotPassword mails a reset link. The response is the same whether or
// not the address belongs to an account, and whether or not the mail went
// out.
func (h *AuthHandlers) ForgotPassword(c echo.Context) error {
	err := h.accounts.RequestPasswordReset(c.Request().Context(), c.FormValue("email"))
	if err != nil && !errors.Is(err, auth.ErrAccountNotFound) && !errors.Is(err, auth.ErrDelivery) {
		return err
	}

	return Render(c, http.StatusOK, templates.View("forgot_password", templates.Form{Notice: "forgot_sent"}))
}

// ResetPasswordPage renders the new password form if the token is usable.
func (h *AuthHandlers) ResetPasswordPage(c echo.Context) error {
	token := c.QueryParam("token")

	if _, err := h.accounts.ValidateToken(c.Request().Context(), token); err != nil {
		return h.tokenProblem(c, err, token, false)
	}

	return Render(c, http.StatusOK, templates.View("reset_password", h.passwordForm(map[string]string{"token": token})))
}

// ResetPassword stores the new password.
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	token := c.FormValue("token")

	err := h.accounts.ResetPassword(c.Request().Context(), auth.ResetPasswordParams{
		Token:           token,
		Password:        c.FormValue("password"),
		ConfirmPassword: c.FormValue("confirm_password"),
	})

	var verr *auth.ValidationError
	switch {
	case err == nil:
		return Render(c, http.StatusOK, templates.View("reset_password", templates.Form{Notice: "reset_done"}))
	case errors.As(err, &verr):
		form := h.passwordForm(map[string]string{"token": token})
		form.Errors = verr.ByField()
		return Render(c, http.StatusUnprocessableEntity, templates.View("reset_password", form))
	case auth.IsTokenError(err), errors.Is(err, auth.ErrAccountNotFound):
		return h.tokenProblem(c, err, token, false)
	default:
		return err
	}
}

// tokenProblem renders the page for an unusable link. Expired verification
// links offer a new one, expired reset links point to the reset form.
func (h *AuthHandlers) tokenProblem(c echo.Context, err error, token string, verification bool) error {
	data := templates.TokenProblem{}

	switch {
	case errors.Is(err, auth.ErrMissingToken):
		data.ReasonID = "verification_missing"
	case errors.Is(err, auth.ErrInvalidSignature):
		data.ReasonID = "verification_invalid"
	case errors.Is(err, auth.ErrExpired):
		data.ReasonID = "verification_expired"
		if verification {
			data.CanResend = true
			data.Token = token
		}
	case errors.Is(err, auth.ErrAccountNotFound):
		data.ReasonID = "verification_not_found"
	default:
		return err
	}
	data.ResetHint = !verification

	return Render(c, http.StatusBadRequest, templates.View("verification", data))
}

func (h *AuthHandlers) passwordForm(values map[string]string) templates.Form {
	return templates.Form{
		Values: values,
		Help:   h.accounts.PasswordValidator().HelpTextIDs(),
	}
}
