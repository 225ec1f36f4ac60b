package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"islebook-backend/internal/cache"
	"islebook-backend/internal/httpx"
	"islebook-backend/internal/middleware"
	"islebook-backend/internal/transport"
	"islebook-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

const listCacheKey = "activities:all"

type Handler struct {
	service  *Service
	verifier PasswordVerifier
	val      *validation.Validator
	log      *slog.Logger
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewHandler(service *Service, verifier PasswordVerifier, val *validation.Validator, log *slog.Logger, c cache.Cache, cacheTTL time.Duration) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
		val:      val,
		log:      log,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	// Only the unfiltered snapshot is cached; filtered views are cheap to
	// recompute and would fragment the cache per query string.
	if query == "" && h.cache != nil {
		if cached, ok, err := h.cache.Get(r.Context(), listCacheKey); err == nil && ok {
			log.Info("activities list: cache hit")
			transport.WriteCachedJSON(w, http.StatusOK, cached)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx, query)
	if err != nil {
		log.Error("activities list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	response := map[string]interface{}{
		"activities": items,
	}

	if query == "" && h.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			_ = h.cache.Set(r.Context(), listCacheKey, payload, h.cacheTTL)
		}
	}

	log.Info("activities list: ok", slog.Int("count", len(items)), slog.String("q", query))
	transport.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	activity, err := h.service.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("activities get: not found", slog.String("activity_id", id))
			transport.WriteError(w, http.StatusNotFound, "activity not found", nil)
			return
		}
		log.Error("activities get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, activity)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateActivityRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("activities create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("activities create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	activity, err := h.service.Create(ctx, req)
	if err != nil {
		if errors.Is(err, ErrInvalidPrice) {
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"price": "price"})
			return
		}
		log.Error("activities create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	h.invalidateList(r.Context())
	log.Info("activities create: ok", slog.String("activity_id", activity.ID), slog.String("title", activity.Title))
	transport.WriteJSON(w, http.StatusCreated, activity)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req UpdateActivityRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("activities update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("activities update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	activity, err := h.service.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("activities update: not found", slog.String("activity_id", id))
			transport.WriteError(w, http.StatusNotFound, "activity not found", nil)
			return
		}
		if errors.Is(err, ErrInvalidPrice) {
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"price": "price"})
			return
		}
		log.Error("activities update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	h.invalidateList(r.Context())
	log.Info("activities update: ok", slog.String("activity_id", id))
	transport.WriteJSON(w, http.StatusOK, activity)
}

// Delete requires the authenticated caller to re-enter their password. The
// source gated deletion behind a password prompt; tying the check to the
// caller's own account is this backend's reading of that gate (see
// DESIGN.md).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}

	var req DeleteActivityRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("activities delete: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.verifier.VerifyPassword(ctx, identity.Email, req.Password); err != nil {
		log.Warn("activities delete: password check failed", slog.String("email", identity.Email))
		transport.WriteError(w, http.StatusForbidden, "invalid password", nil)
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("activities delete: not found", slog.String("activity_id", id))
			transport.WriteError(w, http.StatusNotFound, "activity not found", nil)
			return
		}
		log.Error("activities delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	h.invalidateList(r.Context())
	log.Info("activities delete: ok", slog.String("activity_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}

func (h *Handler) invalidateList(ctx context.Context) {
	if h.cache != nil {
		_ = h.cache.Delete(ctx, listCacheKey)
	}
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
