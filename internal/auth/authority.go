// Package auth issues and verifies the bearer credentials consumed by the
// rest of the service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims are the JWT claims carried by both token kinds. The role is a plain
// string here; the accounts package owns the typed role.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"tokenType"`
	Role      string `json:"role,omitempty"`
}

// TokenPair is an access token plus the refresh token that can renew it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Authority signs and verifies session tokens with a shared HMAC secret.
type Authority struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewAuthority creates a token authority.
func NewAuthority(secret string, accessTTL, refreshTTL time.Duration) *Authority {
	return &Authority{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair issues a fresh access/refresh token pair for the account.
func (a *Authority) IssuePair(accountID uuid.UUID, role string) (TokenPair, error) {
	access, err := a.sign(accountID, role, tokenTypeAccess, a.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := a.sign(accountID, "", tokenTypeRefresh, a.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token and returns the account id and role
// it was issued for.
func (a *Authority) VerifyAccess(token string) (uuid.UUID, string, error) {
	claims, err := a.parse(token, tokenTypeAccess)
	if err != nil {
		return uuid.Nil, "", err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return id, claims.Role, nil
}

// VerifyRefresh validates a refresh token and returns the account id.
func (a *Authority) VerifyRefresh(token string) (uuid.UUID, error) {
	claims, err := a.parse(token, tokenTypeRefresh)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return id, nil
}

func (a *Authority) sign(accountID uuid.UUID, role, tokenType string, ttl time.Duration) (string, error) {
	now := a.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: tokenType,
		Role:      role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(a.secret)
}

func (a *Authority) parse(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return a.now() }))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
