package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opencraftmc/chatrelay/internal/model"
)

// TokenAuthority mints and validates the bearer tokens LoginJWT/RequestJWT
// exchange: claims are exactly {exp, user}, signed with one configured
// symmetric key and algorithm.
type TokenAuthority struct {
	key      []byte
	method   jwt.SigningMethod
	validity time.Duration
}

type tokenClaims struct {
	jwt.RegisteredClaims
	User model.User `json:"user"`
}

// NewTokenAuthority builds an authority for the named signing algorithm
// (e.g. "HS256"); the caller supplies the raw key bytes.
func NewTokenAuthority(key []byte, algorithm string, validity time.Duration) (*TokenAuthority, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	return &TokenAuthority{key: key, method: method, validity: validity}, nil
}

// Mint encodes {exp, user} and signs it with the configured key.
func (a *TokenAuthority) Mint(user model.User) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.validity)),
		},
		User: user,
	}
	token := jwt.NewWithClaims(a.method, claims)
	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature and expiry and returns the embedded User.
func (a *TokenAuthority) Validate(token string) (model.User, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != a.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.key, nil
	})
	if err != nil {
		return model.User{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return model.User{}, fmt.Errorf("invalid token")
	}
	return claims.User, nil
}
