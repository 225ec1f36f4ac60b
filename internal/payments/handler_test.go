package payments

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"islebook-backend/internal/catalog"
	"islebook-backend/internal/models"
	"islebook-backend/internal/validation"
)

type stubPricer struct {
	activities map[string]models.Activity
}

func (s *stubPricer) GetByID(_ context.Context, id string) (models.Activity, error) {
	activity, ok := s.activities[id]
	if !ok {
		return models.Activity{}, catalog.ErrNotFound
	}
	return activity, nil
}

type stubProvider struct {
	lastAmount   int64
	lastCurrency string
	createErr    error
}

func (s *stubProvider) CreateIntent(_ context.Context, amountMinor int64, currency, activityID string) (Intent, error) {
	if s.createErr != nil {
		return Intent{}, s.createErr
	}
	s.lastAmount = amountMinor
	s.lastCurrency = currency
	return Intent{PaymentIntent: "pi_stub", EphemeralKey: "ek_stub", Customer: "cus_stub"}, nil
}

func (s *stubProvider) IntentStatus(_ context.Context, _ string) (string, error) {
	return IntentStatusCreated, nil
}

func (s *stubProvider) EphemeralSecret(_ context.Context) (EphemeralSecret, error) {
	return EphemeralSecret{EphemeralKey: "ek_stub", Customer: "cus_stub"}, nil
}

func newIntentHandler(provider Provider) *Handler {
	pricer := &stubPricer{activities: map[string]models.Activity{
		"act-kayak": {ID: "act-kayak", Title: "Sea Kayaking", Price: 45.50},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(provider, pricer, "eur", validation.New(), logger)
}

func TestCreateIntentPricesFromActivity(t *testing.T) {
	provider := &stubProvider{}
	h := newIntentHandler(provider)

	// The client names the activity; any amount it sends is ignored.
	body := `{"activityId":"act-kayak"}`
	rec := httptest.NewRecorder()
	h.CreateIntent(rec, httptest.NewRequest(http.MethodPost, "/api/payments/intent", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if provider.lastAmount != 4550 {
		t.Errorf("amount = %d, want 4550", provider.lastAmount)
	}
	if provider.lastCurrency != "eur" {
		t.Errorf("currency = %q, want %q", provider.lastCurrency, "eur")
	}

	var intent Intent
	if err := json.NewDecoder(rec.Body).Decode(&intent); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if intent.PaymentIntent != "pi_stub" {
		t.Errorf("paymentIntent = %q, want %q", intent.PaymentIntent, "pi_stub")
	}
}

func TestCreateIntentUnknownActivity(t *testing.T) {
	h := newIntentHandler(&stubProvider{})

	rec := httptest.NewRecorder()
	h.CreateIntent(rec, httptest.NewRequest(http.MethodPost, "/api/payments/intent", strings.NewReader(`{"activityId":"act-missing"}`)))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateIntentProviderUnavailable(t *testing.T) {
	h := newIntentHandler(&stubProvider{createErr: ErrNotConfigured})

	rec := httptest.NewRecorder()
	h.CreateIntent(rec, httptest.NewRequest(http.MethodPost, "/api/payments/intent", strings.NewReader(`{"activityId":"act-kayak"}`)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
