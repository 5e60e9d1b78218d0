// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email_test

import (
	"context"
	"testing"

	"codeberg.org/quotebook/quotebook/internal/config"
	"codeberg.org/quotebook/quotebook/internal/i18n"
	"codeberg.org/quotebook/quotebook/internal/services/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func validSMTPConfig() *config.SMTPConfig {
	return &config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "testuser",
		Password: "testpass",
		From:     "noreply@example.com",
		FromName: "Test App",
		TLS:      true,
	}
}

func verificationMessage() email.Message {
	return email.Message{
		To:        "alice@example.com",
		SubjectID: email.VerificationSubject,
		BodyID:    email.VerificationBody,
		Data: map[string]any{
			"Username":  "alice",
			"VerifyURL": "https://example.com/auth/verify?token=abc",
		},
	}
}

func TestNewService(t *testing.T) {
	cfg := validSMTPConfig()

	svc, err := email.NewService(cfg)

	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestNewService_MissingHost(t *testing.T) {
	cfg := validSMTPConfig()
	cfg.Host = ""

	_, err := email.NewService(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP host is required")
}

func TestNewService_MissingFrom(t *testing.T) {
	cfg := validSMTPConfig()
	cfg.From = ""

	_, err := email.NewService(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP from address is required")
}

func TestRender(t *testing.T) {
	require.NoError(t, i18n.Init())
	svc, err := email.NewService(validSMTPConfig())
	require.NoError(t, err)

	ctx := i18n.WithLocale(context.Background(), language.English)
	raw, err := svc.Render(ctx, verificationMessage())

	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, "To: <alice@example.com>")
	assert.Contains(t, out, "noreply@example.com")
	assert.Contains(t, out, "Subject: Confirm your Quotebook account")
}

func TestRender_InvalidRecipient(t *testing.T) {
	require.NoError(t, i18n.Init())
	svc, err := email.NewService(validSMTPConfig())
	require.NoError(t, err)

	m := verificationMessage()
	m.To = "not an address"

	_, err = svc.Render(context.Background(), m)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "setting to address")
}

func TestSend_LogOnly(t *testing.T) {
	require.NoError(t, i18n.Init())
	cfg := validSMTPConfig()
	cfg.Host = ""
	svc := email.NewLogService(cfg)

	err := svc.Send(context.Background(), verificationMessage())

	assert.NoError(t, err)
}

func TestSend_ConnectionRefused(t *testing.T) {
	require.NoError(t, i18n.Init())
	cfg := validSMTPConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.TLS = false
	svc, err := email.NewService(cfg)
	require.NoError(t, err)

	err = svc.Send(context.Background(), verificationMessage())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending email")
}
