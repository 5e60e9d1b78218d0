// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"codeberg.org/quotebook/quotebook/internal/models"
	"codeberg.org/quotebook/quotebook/internal/repository"
	"codeberg.org/quotebook/quotebook/internal/services/email"
)

// AccountRepository is the persistence the account flows need.
type AccountRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
}

// Notifier delivers account mails.
type Notifier interface {
	Send(ctx context.Context, m email.Message) error
}

// Link paths embedded in account mails.
const (
	VerifyPath = "/auth/verify"
	ResetPath  = "/auth/reset-password"
)

type Service struct {
	repo              AccountRepository
	hasher            *Hasher
	tokens            *TokenService
	notifier          Notifier
	passwordValidator *PasswordValidator
	baseURL           string
}

func NewService(repo AccountRepository, hasher *Hasher, tokens *TokenService, notifier Notifier, baseURL string) *Service {
	return &Service{
		repo:              repo,
		hasher:            hasher,
		tokens:            tokens,
		notifier:          notifier,
		passwordValidator: DefaultPasswordValidator(),
		baseURL:           strings.TrimSuffix(baseURL, "/"),
	}
}

// PasswordValidator returns the password validator for use in handlers
func (s *Service) PasswordValidator() *PasswordValidator {
	return s.passwordValidator
}

// RegisterParams holds the parameters for user registration
type RegisterParams struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// Register validates the form, creates an unverified account and sends the
// verification mail. All field problems are returned together as a
// *ValidationError. If the account was stored but the mail could not be
// sent, the user is returned along with an error wrapping ErrDelivery.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	params.Email = normalizeEmail(params.Email)
	params.Username = strings.TrimSpace(params.Username)

	var v validator
	v.email(params.Email)
	v.username(params.Username)
	v.password(s.passwordValidator, params.Password, params.ConfirmPassword)
	if err := v.err(); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	role, err := s.repo.GetRoleByName(ctx, models.RoleUser)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: role %q is not seeded", ErrConfiguration, models.RoleUser)
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	user := &models.User{
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: passwordHash,
		RoleID:       role.ID,
	}

	// The unique indexes decide concurrent registrations.
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			slog.InfoContext(ctx, "register_failed", "reason", "duplicate")
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.InfoContext(ctx, "register_success", "user_id", user.ID)

	if err := s.sendVerification(ctx, user); err != nil {
		return user, err
	}
	return user, nil
}

// Login authenticates a user and returns the user if successful
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.CompareDummy(password)
			slog.WarnContext(ctx, "login_failed", "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		slog.WarnContext(ctx, "login_failed", "user_id", user.ID, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		slog.InfoContext(ctx, "login_failed", "user_id", user.ID, "reason", "not_verified")
		return nil, ErrAccountNotVerified
	}

	slog.InfoContext(ctx, "login_success", "user_id", user.ID)
	return user, nil
}

// VerifyEmail marks the account named by token as verified. Verifying an
// already verified account succeeds without writing.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.lookup(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	if user.IsVerified {
		slog.InfoContext(ctx, "verify_email_noop", "user_id", user.ID)
		return user, nil
	}

	user.IsVerified = true
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.InfoContext(ctx, "verify_email_success", "user_id", user.ID)
	return user, nil
}

// ResendVerification sends a fresh verification mail to the account named
// by a previously issued token, which may have expired.
func (s *Service) ResendVerification(ctx context.Context, token string) error {
	claims, err := s.tokens.ClaimsIgnoringExpiry(token)
	if err != nil {
		logTokenFailure(ctx, "resend_verification_failed", err)
		return err
	}

	user, err := s.lookup(ctx, claims.Email)
	if err != nil {
		return err
	}

	if user.IsVerified {
		slog.InfoContext(ctx, "resend_verification_noop", "user_id", user.ID)
		return nil
	}

	return s.sendVerification(ctx, user)
}

// RequestPasswordReset mails a reset link. Unknown addresses return
// ErrAccountNotFound; callers decide how much of that to reveal.
func (s *Service) RequestPasswordReset(ctx context.Context, address string) error {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(address))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.InfoContext(ctx, "password_reset_requested", "reason", "unknown_email")
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return err
	}

	err = s.notifier.Send(ctx, email.Message{
		To:        user.Email,
		SubjectID: email.ResetSubject,
		BodyID:    email.ResetBody,
		Data: map[string]any{
			"Username": user.Username,
			"ResetURL": s.link(ResetPath, token),
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "password_reset_email_failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	slog.InfoContext(ctx, "password_reset_requested", "user_id", user.ID)
	return nil
}

// ResetPasswordParams holds the parameters for a password reset
type ResetPasswordParams struct {
	Token           string
	Password        string
	ConfirmPassword string
}

// ResetPassword replaces the password of the account named by the token.
// The verified flag is not checked.
func (s *Service) ResetPassword(ctx context.Context, params ResetPasswordParams) error {
	claims, err := s.ValidateToken(ctx, params.Token)
	if err != nil {
		return err
	}

	var v validator
	v.password(s.passwordValidator, params.Password, params.ConfirmPassword)
	if err := v.err(); err != nil {
		return err
	}

	user, err := s.lookup(ctx, claims.Email)
	if err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return err
	}

	user.PasswordHash = passwordHash
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.InfoContext(ctx, "password_reset_success", "user_id", user.ID)
	return nil
}

// ValidateToken verifies a token and logs the failure reason.
func (s *Service) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		logTokenFailure(ctx, "token_rejected", err)
		return nil, err
	}
	return claims, nil
}

func (s *Service) lookup(ctx context.Context, address string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, address)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.InfoContext(ctx, "account_lookup_failed", "reason", "not_found")
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Service) sendVerification(ctx context.Context, user *models.User) error {
	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	err = s.notifier.Send(ctx, email.Message{
		To:        user.Email,
		SubjectID: email.VerificationSubject,
		BodyID:    email.VerificationBody,
		Data: map[string]any{
			"Username":  user.Username,
			"VerifyURL": s.link(VerifyPath, token),
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "verification_email_failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	slog.InfoContext(ctx, "verification_email_sent", "user_id", user.ID)
	return nil
}

func (s *Service) link(path, token string) string {
	return s.baseURL + path + "?token=" + url.QueryEscape(token)
}

func normalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func logTokenFailure(ctx context.Context, event string, err error) {
	switch {
	case errors.Is(err, ErrInvalidSignature):
		slog.WarnContext(ctx, event, "reason", "invalid_signature")
	case errors.Is(err, ErrExpired):
		slog.InfoContext(ctx, event, "reason", "expired")
	case errors.Is(err, ErrMissingToken):
		slog.InfoContext(ctx, event, "reason", "missing_token")
	}
}
