// Package token signs and verifies the stateless bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the payload carried by every token the service issues. Type is
// "access" or "refresh"; both use the same secret and algorithm and differ
// only by declared type and lifetime.
type Claims struct {
	Role string `json:"role"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Manager signs HS256 tokens with a shared secret and fixed TTLs.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessMinutes, refreshDays int) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessMinutes) * time.Minute,
		refreshTTL: time.Duration(refreshDays) * 24 * time.Hour,
	}
}

// AccessTTL reports the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// Sign issues a token of the given type for the subject. The jti claim keeps
// two tokens issued within the same second distinct, which the refresh token
// store relies on since the signed string is its lookup key.
func (m *Manager) Sign(subject, role, typ string, expires time.Time) (string, error) {
	claims := &Claims{
		Role: role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// SignAccess issues a short-lived access token and returns its expiry.
func (m *Manager) SignAccess(subject, role string) (string, time.Time, error) {
	exp := time.Now().Add(m.accessTTL)
	signed, err := m.Sign(subject, role, "access", exp)
	return signed, exp, err
}

// SignRefresh issues a long-lived refresh token and returns its expiry.
func (m *Manager) SignRefresh(subject, role string) (string, time.Time, error) {
	exp := time.Now().Add(m.refreshTTL)
	signed, err := m.Sign(subject, role, "refresh", exp)
	return signed, exp, err
}

// Verify parses and validates a token. Signature or expiry failures come back
// as ErrTokenExpired/ErrInvalidToken; callers must treat these differently
// from a token that verifies but has no persisted record.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyTyped is Verify plus a check that the token declares the expected
// type, so an access token can never be replayed as a refresh token.
func (m *Manager) VerifyTyped(tokenStr, typ string) (*Claims, error) {
	claims, err := m.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
