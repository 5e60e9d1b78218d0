// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models holds the database row types.
package models

import "time"

// Role names seeded by the initial migration.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. Email and Username are unique.
type User struct { //nolint:govet // fieldalignment not critical for models
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	RoleID       int64     `db:"role_id" json:"role_id"`
	IsVerified   bool      `db:"is_verified" json:"is_verified"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Role struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
