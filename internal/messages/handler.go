package messages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"islebook-backend/internal/httpx"
	"islebook-backend/internal/middleware"
	"islebook-backend/internal/models"
	"islebook-backend/internal/transport"
	"islebook-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

const defaultListLimit = 100

type PostRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, val: val, log: log}
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	activityID := strings.TrimSpace(chi.URLParam(r, "id"))
	if activityID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req PostRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("messages post: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	message, err := h.service.Post(ctx, activityID, identity.Email, identity.Name, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyBody):
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"body": "required"})
		case errors.Is(err, ErrActivityNotFound):
			transport.WriteError(w, http.StatusNotFound, "activity not found", nil)
		default:
			log.Error("messages post: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("messages post: ok", slog.String("activity_id", activityID), slog.String("message_id", message.ID))
	transport.WriteJSON(w, http.StatusCreated, message)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	activityID := strings.TrimSpace(chi.URLParam(r, "id"))
	if activityID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}
	limit, _, err := httpx.ParseLimitOffset(r.URL.Query(), defaultListLimit, 500)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid pagination", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx, activityID, limit)
	if err != nil {
		if errors.Is(err, ErrActivityNotFound) {
			transport.WriteError(w, http.StatusNotFound, "activity not found", nil)
			return
		}
		log.Error("messages list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": items})
}

// Stream pushes new thread messages to the client as server-sent events,
// backed by a change stream on the messages collection.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	activityID := strings.TrimSpace(chi.URLParam(r, "id"))
	if activityID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		transport.WriteError(w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}

	stream, err := h.service.Watch(r.Context(), activityID)
	if err != nil {
		log.Error("messages stream: change stream unavailable", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusServiceUnavailable, "live feed unavailable", nil)
		return
	}
	defer stream.Close(context.Background())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log.Info("messages stream: open", slog.String("activity_id", activityID))

	for stream.Next(r.Context()) {
		var event struct {
			FullDocument models.Message `bson:"fullDocument"`
		}
		if err := stream.Decode(&event); err != nil {
			log.Warn("messages stream: decode failed", slog.String("error", err.Error()))
			continue
		}

		payload, err := json.Marshal(event.FullDocument)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload)
		flusher.Flush()
	}

	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("messages stream: closed with error", slog.String("error", err.Error()))
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
