package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"islebook-backend/internal/models"
	"islebook-backend/internal/payments"
	"islebook-backend/internal/schedule"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound            = errors.New("appointment not found")
	ErrActivityNotFound    = errors.New("activity not found")
	ErrSlotTaken           = errors.New("slot already reserved")
	ErrSlotOutsideWindow   = errors.New("slot outside booking hours")
	ErrLeadTime            = errors.New("slot starts in less than the minimum lead time")
	ErrNotOwner            = errors.New("appointment belongs to another customer")
	ErrNotPending          = errors.New("appointment is not pending")
	ErrNotConfirmed        = errors.New("appointment is not confirmed")
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	ErrAlreadyRated        = errors.New("appointment already rated")
	ErrNotFinished         = errors.New("activity has not taken place yet")
)

// ActivityStore is the slice of the catalog the booking flow needs: slot
// pricing on create and the running rating update on feedback.
type ActivityStore interface {
	GetByID(ctx context.Context, id string) (models.Activity, error)
	ApplyRating(ctx context.Context, id string, stars int) (models.Activity, error)
}

type Service struct {
	repo       Repository
	activities ActivityStore
	provider   payments.Provider
	location   *time.Location
	window     schedule.Window
	lead       time.Duration
	currency   string
	now        func() time.Time
}

func NewService(repo Repository, activities ActivityStore, provider payments.Provider, location *time.Location, window schedule.Window, lead time.Duration, currency string) *Service {
	return &Service{
		repo:       repo,
		activities: activities,
		provider:   provider,
		location:   location,
		window:     window,
		lead:       lead,
		currency:   currency,
		now:        time.Now,
	}
}

// Book reserves an hour slot and opens a payment intent for it. The
// appointment is written as pending before the provider is called, so the
// slot is held while the customer completes payment; Confirm flips it to
// confirmed once the provider reports success.
func (s *Service) Book(ctx context.Context, email, name string, req CreateBookingRequest) (models.Appointment, payments.Intent, error) {
	inWindow, err := schedule.IsSlotInWindow(req.Date, req.Time, s.window, s.location)
	if err != nil {
		return models.Appointment{}, payments.Intent{}, err
	}
	if !inWindow {
		return models.Appointment{}, payments.Intent{}, ErrSlotOutsideWindow
	}

	// Lead time is checked before any money moves.
	ok, err := schedule.MeetsLeadTime(req.Date, req.Time, s.location, s.now(), s.lead)
	if err != nil {
		return models.Appointment{}, payments.Intent{}, err
	}
	if !ok {
		return models.Appointment{}, payments.Intent{}, ErrLeadTime
	}

	activity, err := s.activities.GetByID(ctx, req.ActivityID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Appointment{}, payments.Intent{}, ErrActivityNotFound
		}
		return models.Appointment{}, payments.Intent{}, err
	}

	reserved, err := s.repo.ReservedHours(ctx, req.ActivityID, req.Date)
	if err != nil {
		return models.Appointment{}, payments.Intent{}, err
	}
	hour, err := schedule.SlotHour(req.Time)
	if err != nil {
		return models.Appointment{}, payments.Intent{}, err
	}
	if reserved[hour] {
		return models.Appointment{}, payments.Intent{}, ErrSlotTaken
	}

	createdAt := s.now()
	appointment := models.Appointment{
		ID:            fmt.Sprintf("%s-%d", email, createdAt.UnixMilli()),
		ActivityID:    req.ActivityID,
		CustomerEmail: email,
		CustomerName:  name,
		CustomerPhone: req.Phone,
		Price:         activity.Price,
		Status:        models.AppointmentStatusPending,
		Date:          req.Date,
		Time:          req.Time,
		CreatedAt:     createdAt,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		// The partial unique index on (activityId, date, time) closes the
		// race between the availability check and the insert.
		if mongo.IsDuplicateKeyError(err) {
			return models.Appointment{}, payments.Intent{}, ErrSlotTaken
		}
		return models.Appointment{}, payments.Intent{}, err
	}

	intent, err := s.provider.CreateIntent(ctx, payments.MinorUnits(activity.Price), s.currency, activity.ID)
	if err != nil {
		// Release the slot when the provider cannot open an intent.
		if _, cancelErr := s.repo.CancelPending(ctx, appointment.ID); cancelErr != nil {
			return models.Appointment{}, payments.Intent{}, errors.Join(err, cancelErr)
		}
		return models.Appointment{}, payments.Intent{}, err
	}

	if err := s.repo.SetPaymentIntent(ctx, appointment.ID, intent.PaymentIntent); err != nil {
		return models.Appointment{}, payments.Intent{}, err
	}
	appointment.PaymentIntent = intent.PaymentIntent

	return appointment, intent, nil
}

// Confirm verifies the payment against the provider and moves the pending
// appointment to confirmed. The provider's word is authoritative; the client
// claiming success is not enough.
func (s *Service) Confirm(ctx context.Context, email, id string) (models.Appointment, error) {
	appointment, err := s.owned(ctx, email, id)
	if err != nil {
		return models.Appointment{}, err
	}
	if appointment.Status == models.AppointmentStatusConfirmed {
		return appointment, nil
	}
	if appointment.Status != models.AppointmentStatusPending {
		return models.Appointment{}, ErrNotPending
	}

	status, err := s.provider.IntentStatus(ctx, appointment.PaymentIntent)
	if err != nil {
		return models.Appointment{}, err
	}
	if status != payments.IntentStatusConfirmed {
		return models.Appointment{}, ErrPaymentNotConfirmed
	}

	confirmed, err := s.repo.ConfirmPending(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Appointment{}, ErrNotPending
		}
		return models.Appointment{}, err
	}
	return confirmed, nil
}

// Cancel releases a pending appointment's slot. Confirmed appointments stay;
// refunds are out of band.
func (s *Service) Cancel(ctx context.Context, email, id string) (models.Appointment, error) {
	appointment, err := s.owned(ctx, email, id)
	if err != nil {
		return models.Appointment{}, err
	}
	if appointment.Status != models.AppointmentStatusPending {
		return models.Appointment{}, ErrNotPending
	}

	canceled, err := s.repo.CancelPending(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Appointment{}, ErrNotPending
		}
		return models.Appointment{}, err
	}
	return canceled, nil
}

func (s *Service) ListMine(ctx context.Context, email string) ([]models.Appointment, error) {
	return s.repo.ListByCustomer(ctx, email)
}

// Availability returns the bookable hour slots of an activity on a day:
// the full window minus reserved hours minus slots inside the lead time.
func (s *Service) Availability(ctx context.Context, activityID, date string) ([]string, error) {
	if _, err := s.activities.GetByID(ctx, activityID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}

	slots, err := schedule.GenerateSlots(date, s.window, s.location)
	if err != nil {
		return nil, err
	}

	reserved, err := s.repo.ReservedHours(ctx, activityID, date)
	if err != nil {
		return nil, err
	}
	slots = schedule.FilterReserved(slots, reserved)

	return schedule.FilterLeadTime(date, slots, s.location, s.now(), s.lead)
}

// SubmitRating records the customer's stars on a finished appointment and
// folds them into the activity's running average. Each appointment counts
// once.
func (s *Service) SubmitRating(ctx context.Context, email, id string, stars int) (models.Activity, error) {
	appointment, err := s.owned(ctx, email, id)
	if err != nil {
		return models.Activity{}, err
	}
	if appointment.Status != models.AppointmentStatusConfirmed {
		return models.Activity{}, ErrNotConfirmed
	}

	past, err := schedule.IsPast(appointment.Date, appointment.Time, s.location, s.now())
	if err != nil {
		return models.Activity{}, err
	}
	if !past {
		return models.Activity{}, ErrNotFinished
	}

	attached, err := s.repo.AttachRating(ctx, id, stars)
	if err != nil {
		return models.Activity{}, err
	}
	if !attached {
		return models.Activity{}, ErrAlreadyRated
	}

	activity, err := s.activities.ApplyRating(ctx, appointment.ActivityID, stars)
	if err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

func (s *Service) owned(ctx context.Context, email, id string) (models.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Appointment{}, ErrNotFound
		}
		return models.Appointment{}, err
	}
	if appointment.CustomerEmail != email {
		return models.Appointment{}, ErrNotOwner
	}
	return appointment, nil
}
