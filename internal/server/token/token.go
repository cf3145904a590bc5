// Package token issues and verifies the signed access and refresh tokens
// used by the API. Tokens are HS256 JWTs; the server keeps no session state.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Type discriminates access tokens from refresh tokens.
type Type string

const (
	Access  Type = "Access"
	Refresh Type = "Refresh"
)

// ErrInvalid is returned for any token that fails verification: bad
// signature, malformed encoding or expiry. Callers cannot tell them apart.
var ErrInvalid = errors.New("invalid token")

// ErrWrongType is returned by Claims.Require when the token has the wrong type.
var ErrWrongType = errors.New("wrong token type")

// Claims is the token payload: the user's email and the token type on top of
// the registered sub, iat, exp and jti claims.
type Claims struct {
	Email     string `json:"email"`
	TokenType Type   `json:"token_type"`
	jwt.RegisteredClaims
}

// Require checks that the claims belong to a token of type t.
func (c Claims) Require(t Type) error {
	if c.TokenType != t {
		return ErrWrongType
	}
	return nil
}

// Authority signs and verifies tokens with a single process-wide secret.
type Authority struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures an Authority.
type Option func(*Authority)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) { a.now = now }
}

// New returns an Authority issuing access and refresh tokens with the given lifetimes.
func New(secret []byte, accessTTL, refreshTTL time.Duration, opts ...Option) *Authority {
	a := &Authority{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// AccessTTL is the access token lifetime, reported to clients as expires_in.
func (a *Authority) AccessTTL() time.Duration { return a.accessTTL }

func (a *Authority) IssueAccess(subject, email string) (string, error) {
	return a.issue(subject, email, Access, a.accessTTL)
}

func (a *Authority) IssueRefresh(subject, email string) (string, error) {
	return a.issue(subject, email, Refresh, a.refreshTTL)
}

func (a *Authority) issue(subject, email string, typ Type, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		Email:     email,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.secret)
}

// Verify checks signature and expiry and returns the decoded claims. It does
// not look at the token type; use Claims.Require at the point of use.
func (a *Authority) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalid
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalid
	}
	if claims.TokenType != Access && claims.TokenType != Refresh {
		return Claims{}, ErrInvalid
	}
	return claims, nil
}
