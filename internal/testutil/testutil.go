// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"codeberg.org/quotebook/quotebook/internal/database"
	"codeberg.org/quotebook/quotebook/internal/models"
	"codeberg.org/quotebook/quotebook/internal/repository"
	"codeberg.org/quotebook/quotebook/internal/services/email"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password of users created by NewTestUser.
const TestPassword = "Secret123"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a user with TestPassword in the database.
func NewTestUser(t *testing.T, repo *repository.Repository, emailAddr, username string, verified bool) *models.User {
	t.Helper()
	ctx := context.Background()

	role, err := repo.GetRoleByName(ctx, models.RoleUser)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        emailAddr,
		Username:     username,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		IsVerified:   verified,
	}
	require.NoError(t, repo.CreateUser(ctx, user))
	return user
}

// NewTestQuote creates a quote in the "General" category.
func NewTestQuote(t *testing.T, repo *repository.Repository, user *models.User, text, author string, approved bool) *models.Quote {
	t.Helper()
	ctx := context.Background()

	category, err := repo.GetCategoryByName(ctx, "General")
	require.NoError(t, err)

	quote := &models.Quote{
		Quote:        text,
		Author:       author,
		Approved:     approved,
		UserID:       user.ID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
	}
	require.NoError(t, repo.CreateQuote(ctx, quote))
	return quote
}

// RecordingNotifier collects sent messages instead of delivering them.
// Err, when set, is returned from every Send after recording.
type RecordingNotifier struct {
	Err      error
	messages []email.Message
	mu       sync.Mutex
}

func (n *RecordingNotifier) Send(_ context.Context, m email.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, m)
	return n.Err
}

// Messages returns a copy of all recorded messages.
func (n *RecordingNotifier) Messages() []email.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]email.Message(nil), n.messages...)
}

// Last returns the most recent message.
func (n *RecordingNotifier) Last(t *testing.T) email.Message {
	t.Helper()
	msgs := n.Messages()
	require.NotEmpty(t, msgs, "no message was sent")
	return msgs[len(msgs)-1]
}

// TokenFromLink extracts the token query parameter of a link found in the
// data bag of a message.
func TokenFromLink(t *testing.T, m email.Message, key string) string {
	t.Helper()
	link, ok := m.Data[key].(string)
	require.True(t, ok, "message has no %s", key)
	u, err := url.Parse(link)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewFormContext creates an Echo context carrying an urlencoded form.
func NewFormContext(e *echo.Echo, method, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
