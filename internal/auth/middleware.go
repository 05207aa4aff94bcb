package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can read or shadow the
// principal stored in a request context.
type contextKey struct{}

var principalKey contextKey

// Principal is the identity bound to a request after token validation.
// There are no roles: a request is either authenticated or not.
type Principal struct {
	UserID   string
	Username string
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the principal bound by Authenticate, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok && p.UserID != ""
}

// UserIDFromContext is a shortcut for handlers that only need the ID.
//
//	userID, ok := auth.UserIDFromContext(r.Context())
//	if !ok {
//	    // anonymous request
//	}
func UserIDFromContext(ctx context.Context) (string, bool) {
	p, ok := PrincipalFromContext(ctx)
	return p.UserID, ok
}

// Authenticate runs once per request and never rejects anything.
//
// If the request carries "Authorization: Bearer <token>" and the token is
// valid and unexpired, the principal is bound into the context. A missing
// or non-Bearer header leaves the request anonymous silently; a Bearer
// token that fails validation is logged and the request continues
// anonymous. Rejection is RequireAuth's job.
func Authenticate(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Validate(tokenStr)
			if err != nil {
				logger.Warn("rejected bearer token",
					slog.String("path", r.URL.Path),
					slog.String("reason", failureReason(err)),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{
				UserID:   claims.UserID,
				Username: claims.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that Authenticate left anonymous.
// deny writes the rejection; the handler package supplies one that renders
// the API's standard 401 error body.
func RequireAuth(deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
