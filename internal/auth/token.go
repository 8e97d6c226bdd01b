package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// Claims is the session token payload. Permissions carry the resolved
// snapshot at issue time; they are not re-resolved per request.
type Claims struct {
	UserID             int64    `json:"uid"`
	MemberID           int64    `json:"mid,omitempty"`
	CellGroupID        int64    `json:"cgid,omitempty"`
	Email              string   `json:"email"`
	Role               string   `json:"role"`
	Permissions        []string `json:"perms"`
	MustChangePassword bool     `json:"mcp,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer with the given symmetric
// secret and token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL exposes the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the given claims, stamping issue and expiry
// times.
func (t *TokenIssuer) Issue(claims Claims) (string, error) {
	now := t.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. Every failure mode - malformed
// input, signature mismatch, expiry - collapses to
// shared.ErrAuthenticationFailed so no cryptographic detail leaks to
// the client.
func (t *TokenIssuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, shared.ErrAuthenticationFailed
	}
	return claims, nil
}
