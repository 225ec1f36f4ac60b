package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"islebook-backend/internal/cache"
	"islebook-backend/internal/httpx"
	"islebook-backend/internal/middleware"
	"islebook-backend/internal/models"
	"islebook-backend/internal/notifications"
	"islebook-backend/internal/schedule"
	"islebook-backend/internal/transport"
	"islebook-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

const availabilityCachePrefix = "availability:"

type Handler struct {
	service  *Service
	email    *notifications.BrevoClient
	sms      *notifications.SMSClient
	val      *validation.Validator
	log      *slog.Logger
	cache    cache.Cache
	cacheTTL time.Duration
	timezone string
}

func NewHandler(service *Service, email *notifications.BrevoClient, sms *notifications.SMSClient, val *validation.Validator, log *slog.Logger, c cache.Cache, cacheTTL time.Duration, timezone string) *Handler {
	return &Handler{
		service:  service,
		email:    email,
		sms:      sms,
		val:      val,
		log:      log,
		cache:    c,
		cacheTTL: cacheTTL,
		timezone: timezone,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}

	var req CreateBookingRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("booking create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("booking create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	appointment, intent, err := h.service.Book(ctx, identity.Email, identity.Name, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrActivityNotFound):
			transport.WriteError(w, http.StatusNotFound, "activity not found", nil)
		case errors.Is(err, ErrSlotTaken):
			log.Info("booking create: slot taken", slog.String("activity_id", req.ActivityID), slog.String("date", req.Date), slog.String("time", req.Time))
			transport.WriteError(w, http.StatusConflict, "slot already reserved", nil)
		case errors.Is(err, ErrSlotOutsideWindow):
			transport.WriteError(w, http.StatusBadRequest, "slot outside booking hours", nil)
		case errors.Is(err, ErrLeadTime):
			log.Info("booking create: inside lead time", slog.String("date", req.Date), slog.String("time", req.Time))
			transport.WriteError(w, http.StatusUnprocessableEntity, "bookings must be made at least 24 hours in advance", nil)
		case errors.Is(err, schedule.ErrInvalidDate), errors.Is(err, schedule.ErrInvalidTime):
			transport.WriteError(w, http.StatusBadRequest, "invalid date or time", nil)
		default:
			log.Error("booking create: failed", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusBadGateway, "booking failed", nil)
		}
		return
	}

	h.invalidateAvailability(r.Context(), appointment.ActivityID)

	log.Info("booking create: pending",
		slog.String("appointment_id", appointment.ID),
		slog.String("activity_id", appointment.ActivityID),
		slog.String("date", appointment.Date),
		slog.String("time", appointment.Time),
	)
	transport.WriteJSON(w, http.StatusCreated, BookingResponse{Appointment: appointment, Payment: intent})
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	appointment, err := h.service.Confirm(ctx, identity.Email, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		case errors.Is(err, ErrNotOwner):
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		case errors.Is(err, ErrNotPending):
			transport.WriteError(w, http.StatusConflict, "appointment is not pending", nil)
		case errors.Is(err, ErrPaymentNotConfirmed):
			log.Warn("booking confirm: payment not confirmed", slog.String("appointment_id", id))
			transport.WriteError(w, http.StatusPaymentRequired, "payment not confirmed", nil)
		default:
			log.Error("booking confirm: failed", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusBadGateway, "confirmation failed", nil)
		}
		return
	}

	h.notifyConfirmed(appointment)

	log.Info("booking confirm: ok", slog.String("appointment_id", appointment.ID))
	transport.WriteJSON(w, http.StatusOK, appointment)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	appointment, err := h.service.Cancel(ctx, identity.Email, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		case errors.Is(err, ErrNotOwner):
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		case errors.Is(err, ErrNotPending):
			transport.WriteError(w, http.StatusConflict, "only pending appointments can be canceled", nil)
		default:
			log.Error("booking cancel: failed", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	h.invalidateAvailability(r.Context(), appointment.ActivityID)

	log.Info("booking cancel: ok", slog.String("appointment_id", appointment.ID))
	transport.WriteJSON(w, http.StatusOK, appointment)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.ListMine(ctx, identity.Email)
	if err != nil {
		log.Error("booking list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"appointments": items})
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	activityID := strings.TrimSpace(chi.URLParam(r, "id"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if activityID == "" || date == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id or date", nil)
		return
	}

	// Slot sets only change on booking writes, which invalidate the key by
	// activity prefix. Lead-time drift within the TTL is tolerated.
	cacheKey := availabilityCacheKey(activityID, date)
	if h.cache != nil {
		if cached, ok, err := h.cache.Get(r.Context(), cacheKey); err == nil && ok {
			log.Info("booking availability: cache hit", slog.String("activity_id", activityID), slog.String("date", date))
			transport.WriteCachedJSON(w, http.StatusOK, cached)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slots, err := h.service.Availability(ctx, activityID, date)
	if err != nil {
		switch {
		case errors.Is(err, ErrActivityNotFound):
			transport.WriteError(w, http.StatusNotFound, "activity not found", nil)
		case errors.Is(err, schedule.ErrInvalidDate):
			transport.WriteError(w, http.StatusBadRequest, "invalid date", nil)
		default:
			log.Error("booking availability: failed", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	response := AvailabilityResponse{
		ActivityID: activityID,
		Date:       date,
		Timezone:   h.timezone,
		Slots:      slots,
	}

	if h.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			_ = h.cache.Set(r.Context(), cacheKey, payload, h.cacheTTL)
		}
	}

	transport.WriteJSON(w, http.StatusOK, response)
}

func availabilityCacheKey(activityID, date string) string {
	return fmt.Sprintf("%s%s:%s", availabilityCachePrefix, activityID, date)
}

// invalidateAvailability drops every cached day for the activity. Booking
// writes touch one date, but the prefix sweep keeps the invalidation in one
// place.
func (h *Handler) invalidateAvailability(ctx context.Context, activityID string) {
	if h.cache != nil {
		_ = h.cache.DeletePrefix(ctx, availabilityCachePrefix+activityID+":")
	}
}

func (h *Handler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req RatingRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("booking rating: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	activity, err := h.service.SubmitRating(ctx, identity.Email, id, req.Stars)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		case errors.Is(err, ErrNotOwner):
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		case errors.Is(err, ErrNotConfirmed):
			transport.WriteError(w, http.StatusConflict, "only confirmed appointments can be rated", nil)
		case errors.Is(err, ErrNotFinished):
			transport.WriteError(w, http.StatusConflict, "activity has not taken place yet", nil)
		case errors.Is(err, ErrAlreadyRated):
			transport.WriteError(w, http.StatusConflict, "appointment already rated", nil)
		default:
			log.Error("booking rating: failed", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("booking rating: ok",
		slog.String("appointment_id", id),
		slog.Int("stars", req.Stars),
		slog.Float64("rating", activity.Rating),
	)
	transport.WriteJSON(w, http.StatusOK, activity)
}

// notifyConfirmed sends the confirmation email and SMS off the request path;
// a notification failure never fails the booking.
func (h *Handler) notifyConfirmed(appointment models.Appointment) {
	activity, err := h.service.activities.GetByID(context.Background(), appointment.ActivityID)
	if err != nil {
		h.log.Warn("booking notify: activity lookup failed", slog.String("error", err.Error()))
		return
	}

	if h.email != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if _, err := h.email.SendBookingConfirmation(ctx, appointment, activity); err != nil {
				h.log.Warn("booking notify: email failed", slog.String("appointment_id", appointment.ID), slog.String("error", err.Error()))
			}
		}()
	}

	if h.sms != nil && appointment.CustomerPhone != "" {
		go func() {
			if _, err := h.sms.SendBookingConfirmation(appointment.CustomerPhone, appointment, activity); err != nil {
				h.log.Warn("booking notify: sms failed", slog.String("appointment_id", appointment.ID), slog.String("error", err.Error()))
			}
		}()
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
