// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email renders localized messages and delivers them over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/quotebook/quotebook/internal/config"
	"codeberg.org/quotebook/quotebook/internal/i18n"
	"github.com/wneessen/go-mail"
)

// Message IDs of the account mails.
const (
	VerificationSubject = "email_verification_subject"
	VerificationBody    = "email_verification_body"
	ResetSubject        = "email_password_reset_subject"
	ResetBody           = "email_password_reset_body"
)

// Message is an outgoing mail. SubjectID and BodyID are translation IDs
// rendered with Data in the locale carried by the send context.
type Message struct {
	Data      map[string]any
	To        string
	SubjectID string
	BodyID    string
}

// Service handles email rendering and delivery.
type Service struct {
	cfg     *config.SMTPConfig
	logOnly bool
}

// NewService creates a new email service that delivers over SMTP.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{cfg: cfg}, nil
}

// NewLogService creates an email service that writes every message to the
// log instead of delivering it. Used in development when no SMTP host is set.
func NewLogService(cfg *config.SMTPConfig) *Service {
	return &Service{cfg: cfg, logOnly: true}
}

// Send renders and delivers a message.
func (s *Service) Send(ctx context.Context, m Message) error {
	subject, body := s.render(ctx, m)

	if s.logOnly {
		slog.InfoContext(ctx, "email_logged", "to", m.To, "subject", subject, "body", body)
		return nil
	}

	msg, err := s.compose(m.To, subject, body)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

// Render returns the complete RFC 5322 message without sending it.
func (s *Service) Render(ctx context.Context, m Message) ([]byte, error) {
	subject, body := s.render(ctx, m)

	msg, err := s.compose(m.To, subject, body)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing message: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) render(ctx context.Context, m Message) (string, string) {
	return i18n.TData(ctx, m.SubjectID, m.Data), i18n.TData(ctx, m.BodyID, m.Data)
}

func (s *Service) compose(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return msg, nil
}

// send delivers a message via SMTP using go-mail.
func (s *Service) send(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Configure TLS based on config and port
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
