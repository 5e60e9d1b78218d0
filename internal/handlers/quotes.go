// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/quotebook/quotebook/internal/models"
	"codeberg.org/quotebook/quotebook/internal/repository"
	"github.com/labstack/echo/v4"
)

// QuoteReader reads approved quotes.
type QuoteReader interface {
	ListApprovedQuotes(ctx context.Context) ([]models.Quote, error)
	GetApprovedQuote(ctx context.Context, id string) (*models.Quote, error)
	SearchApprovedQuotesByAuthor(ctx context.Context, author string) ([]models.Quote, error)
}

// QuoteResponse is the JSON form of a quote.
type QuoteResponse struct {
	CreatedAt time.Time `json:"created_at"`
	Quote     string    `json:"quote"`
	Category  string    `json:"category"`
	Author    string    `json:"author"`
	QuoteURL  string    `json:"quote_url"`
}

// QuoteAPI serves the read-only quotes API below /api/v1.
type QuoteAPI struct {
	quotes  QuoteReader
	baseURL string
}

// NewQuoteAPI creates a QuoteAPI. baseURL is used for absolute quote links.
func NewQuoteAPI(quotes QuoteReader, baseURL string) *QuoteAPI {
	return &QuoteAPI{
		quotes:  quotes,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// List returns all approved quotes.
func (a *QuoteAPI) List(c echo.Context) error {
	quotes, err := a.quotes.ListApprovedQuotes(c.Request().Context())
	if err != nil {
		return fmt.Errorf("failed to list quotes: %w", err)
	}
	return c.JSON(http.StatusOK, a.responses(quotes))
}

// Search returns approved quotes by author.
func (a *QuoteAPI) Search(c echo.Context) error {
	author := strings.TrimSpace(c.QueryParam("author"))
	if author == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing search term")
	}

	quotes, err := a.quotes.SearchApprovedQuotesByAuthor(c.Request().Context(), author)
	if err != nil {
		return fmt.Errorf("failed to search quotes: %w", err)
	}
	return c.JSON(http.StatusOK, a.responses(quotes))
}

// Get returns a single approved quote.
func (a *QuoteAPI) Get(c echo.Context) error {
	id := c.Param("id")

	quote, err := a.quotes.GetApprovedQuote(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("quote with ID %s not found", id))
	}
	if err != nil {
		return fmt.Errorf("failed to get quote: %w", err)
	}
	return c.JSON(http.StatusOK, a.response(quote))
}

func (a *QuoteAPI) responses(quotes []models.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		out = append(out, a.response(&quotes[i]))
	}
	return out
}

func (a *QuoteAPI) response(q *models.Quote) QuoteResponse {
	return QuoteResponse{
		Quote:     q.Quote,
		Category:  q.CategoryName,
		Author:    q.Author,
		CreatedAt: q.CreatedAt,
		QuoteURL:  a.baseURL + "/api/v1/quotes/" + url.PathEscape(q.ID),
	}
}
