package application

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"scholarship-service/internal/auth"
	"scholarship-service/internal/httputil"
	"scholarship-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service   Service
	validator *validator.Validate
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
		metrics:   m,
	}
}

// RegisterRoutes mounts the application endpoints. Both require a verified
// session; the caller wires them behind the auth middleware.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/scholarship/apply", h.Submit)
	router.Get("/scholarship/application", h.GetOwn)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("application validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "missing required application fields (fullName, dateOfBirth, essay)")
		return
	}

	created, err := h.service.Submit(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrAlreadySubmitted) {
			httputil.RespondWithError(w, http.StatusConflict, "you have already submitted an application")
			return
		}
		h.logger.Error("application submission failed", "error", err, "user_id", userID)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.RecordApplicationSubmitted(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, SubmitResponse{
		Message:       "application submitted successfully",
		ApplicationID: created.ID,
	})
}

func (h *Handler) GetOwn(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	app, err := h.service.GetOwn(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to fetch application", "error", err, "user_id", userID)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.RecordApplicationViewed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, app)
}
