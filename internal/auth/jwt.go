package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTypeAccess = "access"

var (
	ErrMissingSecret = errors.New("jwt secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

type Claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager refuses to build without a secret. ttl <= 0 means tokens never expire.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs an HS256 token whose subject is the user's id.
func (m *Manager) Issue(u user.User) (string, error) {
	if u.ID == "" {
		return "", errors.New("cannot issue token for user without id")
	}

	now := m.now().UTC()

	claims := Claims{
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  u.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Decode verifies tokenStr and returns the embedded user id.
// Every failure (malformed, bad signature, wrong alg, expired, wrong type) is ErrInvalidToken.
func (m *Manager) Decode(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.TokenType != tokenTypeAccess || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// BearerToken extracts the token from an Authorization header value.
// Both "Bearer <token>" and a bare "<token>" are accepted.
func BearerToken(header string) string {
	const scheme = "Bearer"

	header = strings.TrimSpace(header)

	if len(header) >= len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
		rest := header[len(scheme):]
		if rest == "" || rest[0] == ' ' {
			return strings.TrimSpace(rest)
		}
	}

	return header
}
