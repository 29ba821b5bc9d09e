package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypulse/notify-engine/internal/auth"
)

const testSecret = "middleware-test-secret"

type staticUsers struct {
	user *auth.User
}

func (s *staticUsers) GetByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, errors.New("no such user")
}

func newAuthFixture(t *testing.T, user *auth.User) (*AuthMiddleware, http.Handler, *uuid.UUID) {
	t.Helper()
	verifier := auth.NewVerifier(&staticUsers{user: user}, testSecret)
	mw := NewAuthMiddleware(verifier)

	var seen uuid.UUID
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := r.Context().Value(ContextKeyUserID).(uuid.UUID)
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusOK)
	}))
	return mw, handler, &seen
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	userID := uuid.New()
	_, handler, seen := newAuthFixture(t, &auth.User{ID: userID})

	token, err := auth.GenerateToken(testSecret, time.Hour, userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, *seen)
}

func TestRequireAuth_QueryTokenFallback(t *testing.T) {
	userID := uuid.New()
	_, handler, seen := newAuthFixture(t, &auth.User{ID: userID})

	token, err := auth.GenerateToken(testSecret, time.Hour, userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, *seen)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	_, handler, _ := newAuthFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	_, handler, _ := newAuthFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_RevokedCredentialMessage(t *testing.T) {
	userID := uuid.New()
	token, err := auth.GenerateToken(testSecret, time.Hour, userID)
	require.NoError(t, err)

	changed := time.Now().Add(time.Minute)
	_, handler, _ := newAuthFixture(t, &auth.User{ID: userID, PasswordChangedAt: &changed})

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "credential no longer valid")
}
