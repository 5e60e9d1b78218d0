// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Quote is a submitted quote. Only approved quotes are publicly readable.
// CategoryName is filled by joins and is not a column of its own.
type Quote struct { //nolint:govet // fieldalignment not critical for models
	ID           string    `db:"id"`
	Quote        string    `db:"quote"`
	Author       string    `db:"author"`
	Approved     bool      `db:"approved"`
	UserID       string    `db:"user_id"`
	CategoryID   int64     `db:"category_id"`
	CategoryName string    `db:"category_name"`
	CreatedAt    time.Time `db:"created_at"`
}
