package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"scholarship-service/internal/httputil"
)

type contextKey string

const (
	// UserIDKey is the context key for the authenticated user id
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for the authenticated email
	EmailKey contextKey = "email"
)

// Middleware validates the session token from the cookie and adds claims to
// the request context. On a missing, invalid or expired token it responds
// 401 with a single generic message; an invalid or expired cookie is
// cleared so the client stops resending it.
func Middleware(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				logger.Warn("no auth cookie found", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			claims, err := tokens.Verify(cookie.Value)
			if err != nil {
				// Expired and tampered tokens get the same response but
				// distinct log lines.
				if errors.Is(err, ErrTokenExpired) {
					logger.Warn("session token expired", "path", r.URL.Path)
				} else {
					logger.Warn("session token invalid", "path", r.URL.Path, "error", err)
				}
				ClearSessionCookie(w)
				httputil.RespondWithError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user id from context
func GetUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

// GetEmail extracts the authenticated email from context
func GetEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}
