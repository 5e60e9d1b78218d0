// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import "errors"

// Token errors.
var (
	ErrMissingToken     = errors.New("token missing")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

// Account errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotVerified = errors.New("account not verified")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
)

var (
	// ErrConfiguration reports a deployment problem, such as a missing
	// seed role or an empty signing key.
	ErrConfiguration = errors.New("configuration error")
	// ErrDelivery wraps notification failures that happen after the
	// account change was committed.
	ErrDelivery = errors.New("notification delivery failed")
)

// IsTokenError reports whether err is one of the token errors.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrExpired)
}
