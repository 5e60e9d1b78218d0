// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"codeberg.org/quotebook/quotebook/internal/models"
	"github.com/google/uuid"
)

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const quoteColumns = `q.id, q.quote, q.author, q.approved, q.user_id, q.category_id, q.created_at,
	c.name AS category_name`

// ListApprovedQuotes returns all approved quotes, newest first.
func (r *Repository) ListApprovedQuotes(ctx context.Context) ([]models.Quote, error) {
	quotes := []models.Quote{}
	err := r.db.SelectContext(ctx, &quotes,
		`SELECT `+quoteColumns+` FROM quotes q JOIN categories c ON c.id = q.category_id
		 WHERE q.approved = 1 ORDER BY q.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// GetApprovedQuote retrieves an approved quote by ID. Unapproved quotes
// are reported as ErrNotFound.
func (r *Repository) GetApprovedQuote(ctx context.Context, id string) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.GetContext(ctx, &quote,
		`SELECT `+quoteColumns+` FROM quotes q JOIN categories c ON c.id = q.category_id
		 WHERE q.id = ? AND q.approved = 1`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &quote, nil
}

// SearchApprovedQuotesByAuthor returns approved quotes whose author
// contains the given text, case-insensitively.
func (r *Repository) SearchApprovedQuotesByAuthor(ctx context.Context, author string) ([]models.Quote, error) {
	quotes := []models.Quote{}
	err := r.db.SelectContext(ctx, &quotes,
		`SELECT `+quoteColumns+` FROM quotes q JOIN categories c ON c.id = q.category_id
		 WHERE q.approved = 1 AND q.author LIKE '%' || ? || '%' ESCAPE '\'
		 ORDER BY q.created_at DESC`, likeEscaper.Replace(author))
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// CreateQuote inserts a quote. An empty ID is replaced with a fresh UUID.
func (r *Repository) CreateQuote(ctx context.Context, quote *models.Quote) error {
	if quote.ID == "" {
		quote.ID = uuid.NewString()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO quotes (id, quote, author, approved, user_id, category_id, created_at)
		 VALUES (:id, :quote, :author, :approved, :user_id, :category_id, :created_at)`,
		quote)
	return wrapError(err)
}

// GetCategoryByName retrieves a category by name.
func (r *Repository) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.GetContext(ctx, &category, `SELECT * FROM categories WHERE name = ?`, name); err != nil {
		return nil, wrapError(err)
	}
	return &category, nil
}
