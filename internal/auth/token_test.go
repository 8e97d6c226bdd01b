package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinonia-app/koinonia/internal/shared"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueVerifyRoundtrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, 30*time.Minute)

	token, err := issuer.Issue(Claims{
		UserID:             7,
		MemberID:           42,
		CellGroupID:        3,
		Email:              "leader@example.com",
		Role:               "leader",
		Permissions:        []string{"members:read", "events:read"},
		MustChangePassword: true,
	})
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, int64(42), claims.MemberID)
	assert.Equal(t, int64(3), claims.CellGroupID)
	assert.Equal(t, "leader", claims.Role)
	assert.Equal(t, []string{"members:read", "events:read"}, claims.Permissions)
	assert.True(t, claims.MustChangePassword)
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.Issue(Claims{UserID: 1})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, shared.ErrAuthenticationFailed)
}

func TestVerifyTamperedToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Minute)
	token, err := issuer.Issue(Claims{UserID: 1})
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, shared.ErrAuthenticationFailed)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer(testSecret, time.Minute).Issue(Claims{UserID: 1})
	require.NoError(t, err)

	other := NewTokenIssuer("another-secret-that-is-long-enough", time.Minute)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, shared.ErrAuthenticationFailed)
}

func TestVerifyGarbageCollapsesToAuthFailed(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Minute)
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := issuer.Verify(raw)
		assert.ErrorIs(t, err, shared.ErrAuthenticationFailed, "input %q", raw)
	}
}

func TestZeroTTLDefaults(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, 0)
	assert.Equal(t, 30*time.Minute, issuer.TTL())
}
