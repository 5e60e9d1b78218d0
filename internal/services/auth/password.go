// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"fmt"
	"unicode"
)

// PasswordValidator checks password strength. Rules are evaluated in a
// fixed order: length, digit, letter, uppercase.
type PasswordValidator struct {
	MinLength        int
	RequireDigit     bool
	RequireLetter    bool
	RequireUppercase bool
}

// DefaultPasswordValidator returns the rules used for registration and reset.
func DefaultPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		MinLength:        8,
		RequireDigit:     true,
		RequireLetter:    true,
		RequireUppercase: true,
	}
}

// ValidationResult holds the outcome of a password check. Errors are in
// rule order.
type ValidationResult struct {
	Errors []FieldError
	Valid  bool
}

// First returns the first unmet rule. Only meaningful when !Valid.
func (r ValidationResult) First() FieldError {
	if len(r.Errors) == 0 {
		return FieldError{}
	}
	return r.Errors[0]
}

// Validate checks a password against all configured rules.
func (v *PasswordValidator) Validate(password string) ValidationResult {
	var errs []FieldError
	add := func(code, message string) {
		errs = append(errs, FieldError{Field: FieldPassword, Code: code, Message: message})
	}

	if len([]rune(password)) < v.MinLength {
		add(CodePasswordTooShort, fmt.Sprintf("Password must be at least %d characters long.", v.MinLength))
	}

	var hasUpper, hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
			if unicode.IsUpper(r) {
				hasUpper = true
			}
		}
	}

	if v.RequireDigit && !hasDigit {
		add(CodePasswordNoDigit, "Password must contain at least one number.")
	}
	if v.RequireLetter && !hasLetter {
		add(CodePasswordNoLetter, "Password must contain at least one letter.")
	}
	if v.RequireUppercase && !hasUpper {
		add(CodePasswordNoUppercase, "Password must contain at least one uppercase letter.")
	}

	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// HelpTextIDs returns translation IDs describing the password rules.
func (v *PasswordValidator) HelpTextIDs() []string {
	ids := []string{"password_help_min_length"}
	if v.RequireDigit {
		ids = append(ids, "password_help_digit")
	}
	if v.RequireLetter {
		ids = append(ids, "password_help_letter")
	}
	if v.RequireUppercase {
		ids = append(ids, "password_help_uppercase")
	}
	return ids
}
