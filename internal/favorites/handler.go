package favorites

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"islebook-backend/internal/httpx"
	"islebook-backend/internal/middleware"
	"islebook-backend/internal/transport"
	"islebook-backend/internal/validation"
)

type ToggleRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, val: val, log: log}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	titles, err := h.service.List(ctx, identity.Email)
	if err != nil {
		log.Error("favorites list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"favorites": titles})
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}

	var req ToggleRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("favorites toggle: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	favorited, err := h.service.Toggle(ctx, identity.Email, req.Title)
	if err != nil {
		if errors.Is(err, ErrEmptyTitle) {
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"title": "required"})
			return
		}
		if errors.Is(err, ErrInvalidTitle) {
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"title": "must not contain '.' or start with '$'"})
			return
		}
		log.Error("favorites toggle: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("favorites toggle: ok", slog.String("title", req.Title), slog.Bool("favorited", favorited))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"title":     req.Title,
		"favorited": favorited,
	})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
