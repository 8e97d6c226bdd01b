package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinonia-app/koinonia/internal/shared"
	_ "github.com/koinonia-app/koinonia/testing"
)

func TestAuthenticateAttachesUserContext(t *testing.T) {
	acc := testAccount(t, "hunter2hunter2")
	svc := newAuthService(newMemoryAccounts(acc), map[string][]string{
		"staff": {"members:read"},
	})
	mw := NewMiddleware(svc)

	session, err := svc.Login(context.Background(), acc.Email, "hunter2hunter2")
	require.NoError(t, err)

	var got shared.UserContext
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := shared.UserFromContext(r.Context())
		require.True(t, ok)
		got = user
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/members", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, acc.ID, got.UserID)
	assert.Equal(t, acc.MemberID, got.MemberID)
	assert.Equal(t, "staff", got.Role)
	assert.Equal(t, []string{"members:read"}, got.Permissions)
}

func TestAuthenticateRejectsBadHeaders(t *testing.T) {
	acc := testAccount(t, "hunter2hunter2")
	svc := newAuthService(newMemoryAccounts(acc), nil)
	mw := NewMiddleware(svc)

	handler := mw.Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without a valid token")
	}))

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic dXNlcjpwYXNz",
		"no token":       "Bearer",
		"garbage token":  "Bearer not-a-jwt",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/members", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	acc := testAccount(t, "hunter2hunter2")
	repo := newMemoryAccounts(acc)
	issuer := NewTokenIssuer(testSecret, time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.Issue(Claims{UserID: acc.ID})
	require.NoError(t, err)

	svc := newAuthService(repo, nil)
	mw := NewMiddleware(svc)
	handler := mw.Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run with an expired token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/members", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
