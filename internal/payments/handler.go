package payments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"islebook-backend/internal/catalog"
	"islebook-backend/internal/httpx"
	"islebook-backend/internal/middleware"
	"islebook-backend/internal/models"
	"islebook-backend/internal/transport"
	"islebook-backend/internal/validation"
)

// ActivityPricer resolves the activity an intent is opened for. The amount
// always comes from the stored activity, never from the client.
type ActivityPricer interface {
	GetByID(ctx context.Context, id string) (models.Activity, error)
}

type IntentRequest struct {
	ActivityID string `json:"activityId" validate:"required"`
}

type Handler struct {
	provider   Provider
	activities ActivityPricer
	currency   string
	val        *validation.Validator
	log        *slog.Logger
}

func NewHandler(provider Provider, activities ActivityPricer, currency string, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		provider:   provider,
		activities: activities,
		currency:   currency,
		val:        val,
		log:        log,
	}
}

// CreateIntent mints a standalone payment intent for an activity's price.
// The booking flow opens its own intents; this endpoint serves payment-sheet
// warmup without touching any slot.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req IntentRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("payments intent: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	activity, err := h.activities.GetByID(ctx, req.ActivityID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "activity not found", nil)
			return
		}
		log.Error("payments intent: activity lookup failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	intent, err := h.provider.CreateIntent(ctx, MinorUnits(activity.Price), h.currency, activity.ID)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			transport.WriteError(w, http.StatusServiceUnavailable, "payments unavailable", nil)
			return
		}
		log.Error("payments intent: failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadGateway, "payment provider error", nil)
		return
	}

	log.Info("payments intent: ok", slog.String("activity_id", activity.ID))
	transport.WriteJSON(w, http.StatusOK, intent)
}

func (h *Handler) EphemeralSecret(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	secret, err := h.provider.EphemeralSecret(ctx)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			transport.WriteError(w, http.StatusServiceUnavailable, "payments unavailable", nil)
			return
		}
		log.Error("payments ephemeral secret: failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadGateway, "payment provider error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, secret)
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
