package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"scholarship-service/internal/httputil"
	"scholarship-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewHandler(service *Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
		metrics:   m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.Register)
	router.Post("/auth/login", h.Login)
	router.Post("/auth/logout", h.Logout)
}

// RegisterProtectedRoutes adds the routes that require a valid session.
func (h *Handler) RegisterProtectedRoutes(router chi.Router) {
	router.Get("/auth/me", h.WhoAmI)
}

// Register creates a new applicant account. Validation failures are
// rejected before the store is touched.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("registration validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "email and a password of at least 6 characters are required")
		return
	}

	userID, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			httputil.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("registration failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.RecordUserRegistered(r.Context())
	h.logger.Info("user registered", "user_id", userID)

	httputil.RespondWithJSON(w, http.StatusCreated, RegisterResponse{
		Message: "user registered successfully",
		UserID:  userID,
	})
}

// Login authenticates a user and establishes a session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("login validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.Error("login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	SetSessionCookie(w, token, h.service.tokens.TTL())

	h.metrics.RecordLogin(r.Context())
	h.logger.Info("user logged in", "user_id", user.ID)

	httputil.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Message: "login successful",
		User:    UserInfo{Email: user.Email},
	})
}

// Logout clears the session cookie. It always succeeds and requires no
// auth check. The token itself stays valid until its ttl elapses
// (stateless verification has no revocation).
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w)
	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// WhoAmI returns the identity from the verified token claims. No store
// lookup happens, so account changes are not reflected until the token
// expires.
func (h *Handler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	email, okEmail := GetEmail(r.Context())
	if !ok || !okEmail {
		httputil.RespondWithError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, WhoAmIResponse{
		User: UserInfo{ID: userID, Email: email},
	})
}
