package authz

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ErrSecretEmpty is returned when a token service is built without a secret.
var ErrSecretEmpty = errors.New("token signing secret must not be empty")

// Claims are the JWT claims of a campus bearer token.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token service signing with secret. Issued tokens
// expire after ttl; a ttl of zero issues tokens that never expire.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, ErrSecretEmpty
	}
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for subject carrying roles.
func (t *Tokens) Issue(subject string, roles []string) (string, error) {
	now := t.now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its principal.
// Time claims are checked against the same clock Issue stamps them with.
func (t *Tokens) Verify(token string) (Principal, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Method.Alg())
		}
		return t.secret, nil
	})
	if err != nil {
		return AnonymousPrincipal, err
	}
	if err := t.validate(claims); err != nil {
		return AnonymousPrincipal, err
	}
	return PrincipalFromRoles(claims.Subject, claims.Roles), nil
}

func (t *Tokens) validate(claims *Claims) error {
	now := t.now()
	switch {
	case !claims.VerifyExpiresAt(now, false):
		return jwt.ErrTokenExpired
	case !claims.VerifyIssuedAt(now, false):
		return jwt.ErrTokenUsedBeforeIssued
	case !claims.VerifyNotBefore(now, false):
		return jwt.ErrTokenNotValidYet
	}
	return nil
}
