// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/quotebook/quotebook/internal/models"
	"codeberg.org/quotebook/quotebook/internal/repository"
	"codeberg.org/quotebook/quotebook/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListApprovedQuotes(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "alice", true)
	testutil.NewTestQuote(t, repo, user, "Stay hungry, stay foolish.", "Steve Jobs", true)
	testutil.NewTestQuote(t, repo, user, "Not yet reviewed.", "Anonymous", false)

	quotes, err := repo.ListApprovedQuotes(ctx)

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Stay hungry, stay foolish.", quotes[0].Quote)
	assert.Equal(t, "General", quotes[0].CategoryName)
}

func TestListApprovedQuotes_Empty(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	quotes, err := repo.ListApprovedQuotes(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, quotes)
	assert.Empty(t, quotes)
}

func TestListApprovedQuotes_NewestFirst(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "alice", true)
	category, err := repo.GetCategoryByName(ctx, "Wisdom")
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second"} {
		require.NoError(t, repo.CreateQuote(ctx, &models.Quote{
			Quote:      text,
			Author:     "Someone",
			Approved:   true,
			UserID:     user.ID,
			CategoryID: category.ID,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	quotes, err := repo.ListApprovedQuotes(ctx)

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "second", quotes[0].Quote)
	assert.Equal(t, "Wisdom", quotes[0].CategoryName)
}

func TestGetApprovedQuote(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "alice", true)
	approved := testutil.NewTestQuote(t, repo, user, "Approved.", "A", true)
	pending := testutil.NewTestQuote(t, repo, user, "Pending.", "B", false)

	quote, err := repo.GetApprovedQuote(ctx, approved.ID)
	require.NoError(t, err)
	assert.Equal(t, approved.ID, quote.ID)

	_, err = repo.GetApprovedQuote(ctx, pending.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetApprovedQuote(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSearchApprovedQuotesByAuthor(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "alice", true)
	testutil.NewTestQuote(t, repo, user, "Quote one.", "Albert Einstein", true)
	testutil.NewTestQuote(t, repo, user, "Quote two.", "Marie Curie", true)
	testutil.NewTestQuote(t, repo, user, "Quote three.", "Albert Camus", false)

	quotes, err := repo.SearchApprovedQuotesByAuthor(ctx, "albert")

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Albert Einstein", quotes[0].Author)
}

func TestSearchApprovedQuotesByAuthor_Wildcards(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "alice", true)
	testutil.NewTestQuote(t, repo, user, "Quote one.", "Albert Einstein", true)
	testutil.NewTestQuote(t, repo, user, "Quote two.", "100% Anonymous", true)
	testutil.NewTestQuote(t, repo, user, "Quote three.", `snake_case\fan`, true)

	tests := []struct {
		author   string
		expected []string
	}{
		{"%", []string{"100% Anonymous"}},
		{"_", []string{`snake_case\fan`}},
		{`\`, []string{`snake_case\fan`}},
		{"A_bert", nil},
		{"Al%in", nil},
	}

	for _, tt := range tests {
		t.Run(tt.author, func(t *testing.T) {
			quotes, err := repo.SearchApprovedQuotesByAuthor(ctx, tt.author)
			require.NoError(t, err)

			var authors []string
			for _, q := range quotes {
				authors = append(authors, q.Author)
			}
			assert.Equal(t, tt.expected, authors)
		})
	}
}

func TestCreateQuote_Duplicate(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice@example.com", "alice", true)
	testutil.NewTestQuote(t, repo, user, "Same words.", "A", true)

	category, err := repo.GetCategoryByName(ctx, "General")
	require.NoError(t, err)

	err = repo.CreateQuote(ctx, &models.Quote{
		Quote: "Same words.", Author: "B", UserID: user.ID, CategoryID: category.ID,
	})

	assert.ErrorIs(t, err, repository.ErrConflict)
}
