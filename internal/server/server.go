// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/quotebook/quotebook/internal/config"
	"codeberg.org/quotebook/quotebook/internal/database"
	"codeberg.org/quotebook/quotebook/internal/handlers"
	"codeberg.org/quotebook/quotebook/internal/i18n"
	"codeberg.org/quotebook/quotebook/internal/repository"
	"codeberg.org/quotebook/quotebook/internal/services/auth"
	"codeberg.org/quotebook/quotebook/internal/services/email"
	"codeberg.org/quotebook/quotebook/internal/services/session"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

const secretKeyLength = 32

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations are applied on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	notifier, err := newNotifier(&cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to set up email: %w", err)
	}

	e, err := newServer(cfg, repository.New(db), notifier)
	if err != nil {
		return err
	}

	return startWithGracefulShutdown(ctx, e, cfg)
}

// newServer wires services, middleware and routes into an Echo instance.
func newServer(cfg *config.Config, repo *repository.Repository, notifier auth.Notifier) (*echo.Echo, error) {
	tokens, err := auth.NewTokenService(secretKey(cfg.Auth.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to set up tokens: %w", err)
	}

	sessions, err := session.NewManager(&cfg.Session, cfg.SecureCookies())
	if err != nil {
		return nil, fmt.Errorf("failed to set up sessions: %w", err)
	}

	accounts := auth.NewService(repo, auth.NewHasher(cfg.Auth.BcryptCost), tokens, notifier, cfg.Server.BaseURL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	setupMiddleware(e, cfg, sessions, repo)
	setupRoutes(e, routes{
		pages:    handlers.New(repo),
		accounts: handlers.NewAuth(accounts, sessions),
		quotes:   handlers.NewQuoteAPI(repo, cfg.Server.BaseURL),
	})

	return e, nil
}

// newNotifier returns an SMTP mailer, or a mailer that only logs when no
// SMTP host is configured.
func newNotifier(cfg *config.SMTPConfig) (*email.Service, error) {
	if cfg.Host == "" {
		slog.Warn("SMTP host not configured, emails will be logged instead of sent")
		return email.NewLogService(cfg), nil
	}
	return email.NewService(cfg)
}

// secretKey returns the configured token key, or a random one. Links sent
// with a random key stop working on restart.
func secretKey(configured string) []byte {
	if configured != "" {
		return []byte(configured)
	}
	slog.Warn("secret key not configured, generating a random key; emailed links will not survive restarts")
	key := make([]byte, secretKeyLength)
	_, _ = rand.Read(key)
	return key
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Channel for server errors
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
