// Package auth provides the token codec, password hashing and the HTTP
// authentication gate for the to-do API.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Client registers or logs in via POST /api/auth/{register,login}
//  2. The credential service issues a signed JWT carrying userId + username
//  3. The client sends it back on every call: Authorization: Bearer <token>
//  4. The Authenticate middleware validates it and binds a Principal into the
//     request context; RequireAuth rejects requests without one
//
// JWT STRUCTURE (three base64url parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"userId":"...","username":"...","sub":"...","iss":"todo-api","iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The server verifies a token with nothing but the secret, no DB lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "todo-api"

// Token failures. Callers that only need "valid or not" can ignore which one
// they got; the gate treats all of them the same way.
var (
	ErrMalformed        = errors.New("auth: malformed token")
	ErrInvalidSignature = errors.New("auth: invalid token signature")
	ErrExpired          = errors.New("auth: token expired")
)

// Claims is the decoded JWT payload.
//
// UserID is duplicated into the registered "sub" claim so generic JWT
// tooling can still identify the subject.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ExpiresAtTime returns the expiry as a time.Time (zero if absent).
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenService issues and verifies HS256 tokens.
//
// It holds the HMAC secret used to sign and verify, the token lifetime and a
// clock. It has no mutable state, so one instance is shared by all requests.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now. Tests use it to move across the expiry boundary.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService.
// The secret should be at least 32 bytes of random data in production:
//
//	JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("auth: token TTL must be positive, got %s", ttl)
	}
	s := &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL is the lifetime given to newly issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates and signs a token for the given user.
// issued-at is now, expiry is now + TTL (both truncated to whole seconds by
// the JWT NumericDate encoding).
func (s *TokenService) Issue(userID, username string) (string, error) {
	if userID == "" {
		return "", errors.New("auth: cannot issue token without a user ID")
	}
	now := s.now()

	c := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and decodes the claims. It deliberately does
// NOT check expiry; use Validate (or IsExpired) for that.
//
// ALGORITHM CONFUSION ATTACK:
// Without pinning the algorithm, an attacker could send a token with
// "alg":"none" or an asymmetric alg and have it accepted. WithValidMethods
// restricts parsing to HS256 only.
//
// WithStrictDecoding rejects base64url segments whose unused trailing bits
// are not zero. Without it several spellings of the last signature character
// decode to the same bytes, so an altered token would still verify.
func (s *TokenService) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMalformed
	}

	c := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenStr,
		c,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	if c.UserID == "" || c.ExpiresAt == nil || c.Issuer != tokenIssuer {
		return nil, fmt.Errorf("%w: missing or unexpected claims", ErrMalformed)
	}
	return c, nil
}

// IsExpired reports whether the token is past its expiry. A token that
// cannot be parsed at all counts as expired.
func (s *TokenService) IsExpired(tokenStr string) bool {
	c, err := s.Parse(tokenStr)
	if err != nil {
		return true
	}
	return s.expired(c)
}

// Validate is Parse plus the expiry check. It is the only entry point the
// authentication gate uses.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	c, err := s.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if s.expired(c) {
		return nil, ErrExpired
	}
	return c, nil
}

// A token is valid while now < exp.
func (s *TokenService) expired(c *Claims) bool {
	return !s.now().Before(c.ExpiresAtTime())
}
