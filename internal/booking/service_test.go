package booking

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"islebook-backend/internal/catalog"
	"islebook-backend/internal/models"
	"islebook-backend/internal/payments"
	"islebook-backend/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRepo struct {
	appointments map[string]models.Appointment
	failCreate   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{appointments: make(map[string]models.Appointment)}
}

func (f *fakeRepo) Create(_ context.Context, appointment models.Appointment) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	for _, existing := range f.appointments {
		if existing.ActivityID == appointment.ActivityID &&
			existing.Date == appointment.Date &&
			existing.Time == appointment.Time &&
			existing.Status != models.AppointmentStatusCanceled {
			return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
		}
	}
	f.appointments[appointment.ID] = appointment
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (models.Appointment, error) {
	appointment, ok := f.appointments[id]
	if !ok {
		return models.Appointment{}, mongo.ErrNoDocuments
	}
	return appointment, nil
}

func (f *fakeRepo) ListByCustomer(_ context.Context, email string) ([]models.Appointment, error) {
	items := make([]models.Appointment, 0)
	for _, appointment := range f.appointments {
		if appointment.CustomerEmail == email {
			items = append(items, appointment)
		}
	}
	return items, nil
}

func (f *fakeRepo) ReservedHours(_ context.Context, activityID, date string) (map[int]bool, error) {
	reserved := make(map[int]bool)
	for _, appointment := range f.appointments {
		if appointment.ActivityID != activityID || appointment.Date != date {
			continue
		}
		if appointment.Status == models.AppointmentStatusCanceled {
			continue
		}
		hour, err := schedule.SlotHour(appointment.Time)
		if err != nil {
			continue
		}
		reserved[hour] = true
	}
	return reserved, nil
}

func (f *fakeRepo) SetPaymentIntent(_ context.Context, id, intentID string) error {
	appointment, ok := f.appointments[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	appointment.PaymentIntent = intentID
	f.appointments[id] = appointment
	return nil
}

func (f *fakeRepo) ConfirmPending(_ context.Context, id string) (models.Appointment, error) {
	return f.transition(id, models.AppointmentStatusConfirmed)
}

func (f *fakeRepo) CancelPending(_ context.Context, id string) (models.Appointment, error) {
	return f.transition(id, models.AppointmentStatusCanceled)
}

func (f *fakeRepo) transition(id, status string) (models.Appointment, error) {
	appointment, ok := f.appointments[id]
	if !ok || appointment.Status != models.AppointmentStatusPending {
		return models.Appointment{}, mongo.ErrNoDocuments
	}
	appointment.Status = status
	f.appointments[id] = appointment
	return appointment, nil
}

func (f *fakeRepo) AttachRating(_ context.Context, id string, stars int) (bool, error) {
	appointment, ok := f.appointments[id]
	if !ok || appointment.Rating != nil {
		return false, nil
	}
	appointment.Rating = &stars
	f.appointments[id] = appointment
	return true, nil
}

func (f *fakeRepo) ExpirePendingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var expired int64
	for id, appointment := range f.appointments {
		if appointment.Status == models.AppointmentStatusPending && appointment.CreatedAt.Before(cutoff) {
			appointment.Status = models.AppointmentStatusCanceled
			f.appointments[id] = appointment
			expired++
		}
	}
	return expired, nil
}

type fakeActivities struct {
	activities map[string]models.Activity
}

func (f *fakeActivities) GetByID(_ context.Context, id string) (models.Activity, error) {
	activity, ok := f.activities[id]
	if !ok {
		return models.Activity{}, mongo.ErrNoDocuments
	}
	return activity, nil
}

func (f *fakeActivities) ApplyRating(_ context.Context, id string, stars int) (models.Activity, error) {
	activity, ok := f.activities[id]
	if !ok {
		return models.Activity{}, mongo.ErrNoDocuments
	}
	activity.Rating = catalog.NextRating(activity.Rating, activity.NumberOfReviews, stars)
	activity.NumberOfReviews++
	f.activities[id] = activity
	return activity, nil
}

type fakeProvider struct {
	createErr error
	status    string
	statusErr error
	created   int
}

func (f *fakeProvider) CreateIntent(_ context.Context, amountMinor int64, currency, activityID string) (payments.Intent, error) {
	if f.createErr != nil {
		return payments.Intent{}, f.createErr
	}
	f.created++
	return payments.Intent{
		PaymentIntent: "pi_test",
		EphemeralKey:  "ek_test",
		Customer:      "cus_test",
		DisplayName:   "IsleBook",
	}, nil
}

func (f *fakeProvider) IntentStatus(_ context.Context, intentID string) (string, error) {
	if f.statusErr != nil {
		return "", f.statusErr
	}
	return f.status, nil
}

func (f *fakeProvider) EphemeralSecret(_ context.Context) (payments.EphemeralSecret, error) {
	return payments.EphemeralSecret{EphemeralKey: "ek_test", Customer: "cus_test"}, nil
}

func maltaTime(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Malta")
	require.NoError(t, err)
	return loc
}

func newTestService(t *testing.T, repo *fakeRepo, provider *fakeProvider, now time.Time) (*Service, *fakeActivities) {
	t.Helper()
	activities := &fakeActivities{activities: map[string]models.Activity{
		"act-scuba": {ID: "act-scuba", Title: "Scuba Diving", Price: 50, Rating: 4.0, NumberOfReviews: 2},
	}}
	loc := maltaTime(t)
	svc := NewService(repo, activities, provider, loc, schedule.Window{Open: 9, Close: 18}, 24*time.Hour, "eur")
	svc.now = func() time.Time { return now.In(loc) }
	return svc, activities
}

func TestBookHappyPath(t *testing.T) {
	loc := maltaTime(t)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, loc)
	repo := newFakeRepo()
	provider := &fakeProvider{}
	svc, _ := newTestService(t, repo, provider, now)

	req := CreateBookingRequest{ActivityID: "act-scuba", Date: "2026-09-03", Time: "10:00"}
	appointment, intent, err := svc.Book(context.Background(), "amy@example.com", "Amy Pace", req)
	require.NoError(t, err)

	assert.Equal(t, models.AppointmentStatusPending, appointment.Status)
	assert.Equal(t, "amy@example.com", appointment.CustomerEmail)
	assert.Equal(t, 50.0, appointment.Price)
	assert.Equal(t, "pi_test", appointment.PaymentIntent)
	assert.Equal(t, "pi_test", intent.PaymentIntent)
	assert.Equal(t, "amy@example.com-"+strconv.FormatInt(now.UnixMilli(), 10), appointment.ID)

	stored, err := repo.GetByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_test", stored.PaymentIntent)
}

func TestBookRejectsInsideLeadTime(t *testing.T) {
	loc := maltaTime(t)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, loc)
	repo := newFakeRepo()
	provider := &fakeProvider{}
	svc, _ := newTestService(t, repo, provider, now)

	req := CreateBookingRequest{ActivityID: "act-scuba", Date: "2026-09-02", Time: "09:00"}
	_, _, err := svc.Book(context.Background(), "amy@example.com", "Amy Pace", req)
	require.ErrorIs(t, err, ErrLeadTime)

	// Nothing was written and no intent was opened.
	assert.Empty(t, repo.appointments)
	assert.Zero(t, provider.created)
}

func TestBookRejectsSlotOutsideWindow(t *testing.T) {
	loc := maltaTime(t)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, loc)
	svc, _ := newTestService(t, newFakeRepo(), &fakeProvider{}, now)

	req := CreateBookingRequest{ActivityID: "act-scuba", Date: "2026-09-03", Time: "20:00"}
	_, _, err := svc.Book(context.Background(), "amy@example.com", "Amy Pace", req)
	require.ErrorIs(t, err, ErrSlotOutsideWindow)
}

func TestBookRejectsTakenSlot(t *testing.T) {
	loc := maltaTime(t)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, loc)
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo, &fakeProvider{}, now)

	req := CreateBookingRequest{ActivityID: "act-scuba", Date: "2026-09-03", Time: "10:00"}
	_, _, err := svc.Book(context.Background(), "amy@example.com", "Amy Pace", req)
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(time.Minute) }
	_, _, err = svc.Book(context.Background(), "ben@example.com", "Ben Grech", req)
	require.ErrorIs(t, err, ErrSlotTaken)
}

func TestBookReleasesSlotWhenProviderFails(t *testing.T) {
	loc := maltaTime(t)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, loc)
	repo := newFakeRepo()
	provider := &fakeProvider{createErr: errors.New("provider down")}
	svc, _ := newTestService(t, repo, provider, now)

	req := CreateBookingRequest{ActivityID: "act-scuba", Date: "2026-09-03", Time: "10:00"}
	_, _, err := svc.Book(context.Background(), "amy@example.com", "Amy Pace", req)
	require.Error(t, err)

	for _, appointment := range repo.appointments {
		assert.Equal(t, models.AppointmentStatusCanceled, appointment.Status)
	}
}

func TestConfirmRequiresProviderConfirmation(t *testing.T) {
	loc := maltaTime(t)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, loc)
	repo := newFakeRepo()
	provider := &fakeProvider{status: payments.IntentStatusCreated}
	svc, _ := newTestService(t, repo, provider, now)

	req := CreateBookingRequest{ActivityID: "act-scuba", Date: "2026-09-03", Time: "10:00"}
	appointment, _, err := svc.Book(context.Background(), "amy@example.com", "Amy Pace", req)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), "amy@example.com", appointment.ID)
	require.ErrorIs(t, err, ErrPaymentNotConfirmed)

	provider.status = payments.IntentStatusConfirmed
	confirmed, err := svc.Confirm(context.Background(), "amy@example.com", appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, confirmed.Status)

	// Confirming twice is a no-op, not an error.
	again, err := svc.Confirm(context.Background(), "amy@example.com", appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, again.Status)
}

func TestConfirmRejectsOtherCustomer(t *testing.T) {
	loc := maltaTime(t)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, loc)
	repo := newFakeRepo()
	provider := &fakeProvider{status: payments.IntentStatusConfirmed}
	svc, _ := newTestService(t, repo, provider, now)

	req := CreateBookingRequest{ActivityID: "act-scuba", Date: "2026-09-03", Time: "10:00"}
	appointment, _, err := svc.Book(context.Background(), "amy@example.com", "Amy Pace", req)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), "ben@example.com", appointment.ID)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestAvailabilityExcludesReservedAndLeadTime(t *testing.T) {
	loc := maltaTime(t)
	now := time.Date(2026, 9, 2, 11, 30, 0, 0, loc)
	repo := newFakeRepo()
	provider := &fakeProvider{}
	svc, _ := newTestService(t, repo, provider, time.Date(2026, 9, 1, 10, 0, 0, 0, loc))

	req := CreateBookingRequest{ActivityID: "act-scuba", Date: "2026-09-03", Time: "10:00"}
	_, _, err := svc.Book(context.Background(), "amy@example.com", "Amy Pace", req)
	require.NoError(t, err)

	svc.now = func() time.Time { return now }
	slots, err := svc.Availability(context.Background(), "act-scuba", "2026-09-03")
	require.NoError(t, err)

	// Window is 09:00-17:00; 09:00-11:00 fall inside the 24h lead time from
	// 11:30, and 10:00 is reserved anyway.
	assert.Equal(t, []string{"12:00", "13:00", "14:00", "15:00", "16:00", "17:00"}, slots)
}

func TestSubmitRatingFlow(t *testing.T) {
	loc := maltaTime(t)
	bookedAt := time.Date(2026, 9, 1, 10, 0, 0, 0, loc)
	repo := newFakeRepo()
	provider := &fakeProvider{status: payments.IntentStatusConfirmed}
	svc, activities := newTestService(t, repo, provider, bookedAt)

	req := CreateBookingRequest{ActivityID: "act-scuba", Date: "2026-09-03", Time: "10:00"}
	appointment, _, err := svc.Book(context.Background(), "amy@example.com", "Amy Pace", req)
	require.NoError(t, err)

	// Pending appointments cannot be rated.
	_, err = svc.SubmitRating(context.Background(), "amy@example.com", appointment.ID, 5)
	require.ErrorIs(t, err, ErrNotConfirmed)

	_, err = svc.Confirm(context.Background(), "amy@example.com", appointment.ID)
	require.NoError(t, err)

	// The activity has not happened yet.
	_, err = svc.SubmitRating(context.Background(), "amy@example.com", appointment.ID, 5)
	require.ErrorIs(t, err, ErrNotFinished)

	svc.now = func() time.Time { return time.Date(2026, 9, 4, 9, 0, 0, 0, loc) }

	activity, err := svc.SubmitRating(context.Background(), "amy@example.com", appointment.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 4.3, activity.Rating)
	assert.Equal(t, 3, activity.NumberOfReviews)
	assert.Equal(t, 4.3, activities.activities["act-scuba"].Rating)

	// A second rating on the same appointment is refused.
	_, err = svc.SubmitRating(context.Background(), "amy@example.com", appointment.ID, 1)
	require.ErrorIs(t, err, ErrAlreadyRated)
}

func TestCancelReleasesSlot(t *testing.T) {
	loc := maltaTime(t)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, loc)
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo, &fakeProvider{}, now)

	req := CreateBookingRequest{ActivityID: "act-scuba", Date: "2026-09-03", Time: "10:00"}
	appointment, _, err := svc.Book(context.Background(), "amy@example.com", "Amy Pace", req)
	require.NoError(t, err)

	canceled, err := svc.Cancel(context.Background(), "amy@example.com", appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCanceled, canceled.Status)

	svc.now = func() time.Time { return now.Add(time.Minute) }
	_, _, err = svc.Book(context.Background(), "ben@example.com", "Ben Grech", req)
	require.NoError(t, err)
}
