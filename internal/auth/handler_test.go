package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scholarship-service/internal/auth"
	"scholarship-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T, repo auth.Repository) (chi.Router, *auth.TokenService) {
	t.Helper()

	tokens := auth.NewTokenService("test-secret-key-for-testing", time.Hour)
	service := auth.NewService(repo, tokens, bcrypt.MinCost, discardLogger())
	handler := auth.NewHandler(service, discardLogger(), metrics.NewMock())

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(tokens, discardLogger()))
			handler.RegisterProtectedRoutes(pr)
		})
	})

	return router, tokens
}

func postJSON(t *testing.T, router chi.Router, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	return nil
}

func TestHandler_Register(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserRepo())

		w := postJSON(t, router, "/api/auth/register", map[string]string{
			"email":    "a@x.com",
			"password": "secret1",
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp auth.RegisterResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 1, resp.UserID)

		// Registration does not log the user in
		assert.Nil(t, sessionCookie(t, w))
	})

	t.Run("ShortPassword_NoStoreAccess", func(t *testing.T) {
		repo := newFakeUserRepo()
		router, _ := newTestRouter(t, repo)

		w := postJSON(t, router, "/api/auth/register", map[string]string{
			"email":    "a@x.com",
			"password": "short",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, repo.createCalls, "validation must reject before touching the store")
	})

	t.Run("MissingFields", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserRepo())

		w := postJSON(t, router, "/api/auth/register", map[string]string{"email": "a@x.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserRepo())

		first := postJSON(t, router, "/api/auth/register", map[string]string{
			"email":    "duplicate@x.com",
			"password": "secret1",
		})
		require.Equal(t, http.StatusCreated, first.Code)

		second := postJSON(t, router, "/api/auth/register", map[string]string{
			"email":    "duplicate@x.com",
			"password": "secret2",
		})
		assert.Equal(t, http.StatusConflict, second.Code)
	})
}

func TestHandler_Login(t *testing.T) {
	register := func(t *testing.T, router chi.Router) {
		w := postJSON(t, router, "/api/auth/register", map[string]string{
			"email":    "a@x.com",
			"password": "secret1",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("Success_SetsCookie", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserRepo())
		register(t, router)

		w := postJSON(t, router, "/api/auth/login", map[string]string{
			"email":    "a@x.com",
			"password": "secret1",
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp auth.LoginResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "a@x.com", resp.User.Email)

		cookie := sessionCookie(t, w)
		require.NotNil(t, cookie, "session cookie should be set")
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)

		// The password hash never appears in the response
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("WrongPassword", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserRepo())
		register(t, router)

		w := postJSON(t, router, "/api/auth/login", map[string]string{
			"email":    "a@x.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid email or password")
	})

	t.Run("UnknownEmail_SameErrorShape", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserRepo())
		register(t, router)

		wrongPass := postJSON(t, router, "/api/auth/login", map[string]string{
			"email":    "a@x.com",
			"password": "wrong",
		})
		noUser := postJSON(t, router, "/api/auth/login", map[string]string{
			"email":    "nobody@x.com",
			"password": "secret1",
		})

		assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
		assert.Equal(t, http.StatusUnauthorized, noUser.Code)
		assert.Equal(t, wrongPass.Body.String(), noUser.Body.String())
	})

	t.Run("MissingFields", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserRepo())

		w := postJSON(t, router, "/api/auth/login", map[string]string{"email": "a@x.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Logout(t *testing.T) {
	router, _ := newTestRouter(t, newFakeUserRepo())

	// No auth required: logout with no session still succeeds
	w := postJSON(t, router, "/api/auth/logout", map[string]string{})

	assert.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge, "logout must expire the session cookie")
}

func TestHandler_WhoAmI(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserRepo())

		register := postJSON(t, router, "/api/auth/register", map[string]string{
			"email":    "a@x.com",
			"password": "secret1",
		})
		require.Equal(t, http.StatusCreated, register.Code)

		login := postJSON(t, router, "/api/auth/login", map[string]string{
			"email":    "a@x.com",
			"password": "secret1",
		})
		require.Equal(t, http.StatusOK, login.Code)
		cookie := sessionCookie(t, login)
		require.NotNil(t, cookie)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp auth.WhoAmIResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 1, resp.User.ID)
		assert.Equal(t, "a@x.com", resp.User.Email)
	})

	t.Run("NoCookie", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserRepo())

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ExpiredToken_ClearsCookie", func(t *testing.T) {
		router, _ := newTestRouter(t, newFakeUserRepo())

		expired := auth.NewTokenService("test-secret-key-for-testing", -time.Second)
		tokenString, err := expired.Issue(1, "a@x.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tokenString})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		cleared := sessionCookie(t, w)
		require.NotNil(t, cleared, "bad cookie should be overwritten")
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge)
	})

	t.Run("TamperedToken", func(t *testing.T) {
		router, tokens := newTestRouter(t, newFakeUserRepo())

		tokenString, err := tokens.Issue(1, "a@x.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tokenString + "x"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
