package auth

import (
	"net/http"
	"os"
	"time"
)

// CookieName is the session cookie holding the signed token.
const CookieName = "auth_token"

// SetSessionCookie wraps a token in a secure HttpOnly cookie whose expiry
// matches the token ttl.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	// Determine SameSite based on environment
	sameSite := http.SameSiteStrictMode
	env := os.Getenv("ENV")
	if env == "development" || env == "local" {
		sameSite = http.SameSiteLaxMode // Allow testing from Postman
	}

	// Secure cookies require HTTPS - enable outside local development
	secure := env != "development" && env != "local" && env != ""

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,     // XSS protection
		Secure:   secure,   // HTTPS only outside local dev
		SameSite: sameSite, // CSRF protection
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie overwrites and immediately expires the session cookie.
// Clearing a cookie that does not exist is a no-op, so this is idempotent.
func ClearSessionCookie(w http.ResponseWriter) {
	env := os.Getenv("ENV")
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   env != "development" && env != "local" && env != "",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1, // Delete cookie
	})
}
