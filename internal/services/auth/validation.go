// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Form field names.
const (
	FieldEmail           = "email"
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
)

// Validation codes. Handlers translate them as "validation_<code>".
const (
	CodeEmailInvalid        = "email_invalid"
	CodeUsernameTooShort    = "username_too_short"
	CodePasswordTooShort    = "password_too_short"
	CodePasswordNoDigit     = "password_no_digit"
	CodePasswordNoLetter    = "password_no_letter"
	CodePasswordNoUppercase = "password_no_uppercase"
	CodePasswordMismatch    = "password_mismatch"
)

// MinUsernameLength is the shortest accepted username.
const MinUsernameLength = 4

// FieldError is a single rejected form field.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// ValidationError lists every rejected field in form order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Message
}

// For returns the error for field, if any.
func (e *ValidationError) For(field string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f, true
		}
	}
	return FieldError{}, false
}

// ByField maps field names to their validation codes.
func (e *ValidationError) ByField() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Code
	}
	return m
}

type validator struct {
	fields []FieldError
}

func (v *validator) add(field, code, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Code: code, Message: message})
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func (v *validator) email(address string) {
	addr, err := mail.ParseAddress(address)
	// Reject display-name forms like "Bob <bob@example.com>".
	if err != nil || addr.Address != strings.TrimSpace(address) {
		v.add(FieldEmail, CodeEmailInvalid, "Invalid email address.")
	}
}

func (v *validator) username(name string) {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinUsernameLength {
		v.add(FieldUsername, CodeUsernameTooShort, "Username must be at least 4 characters long.")
	}
}

// password reports the first unmet strength rule and a confirmation mismatch.
func (v *validator) password(pv *PasswordValidator, password, confirm string) {
	if result := pv.Validate(password); !result.Valid {
		v.fields = append(v.fields, result.First())
	}
	if password != confirm {
		v.add(FieldConfirmPassword, CodePasswordMismatch, "Passwords must match.")
	}
}
