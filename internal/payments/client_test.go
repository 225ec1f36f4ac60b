package payments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		price float64
		want  int64
	}{
		{50, 5000},
		{35.5, 3550},
		{19.99, 1999},
		{0, 0},
	}
	for _, c := range cases {
		if got := MinorUnits(c.price); got != c.want {
			t.Fatalf("MinorUnits(%v) = %d, want %d", c.price, got, c.want)
		}
	}
}

func TestCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paymentIntent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("price") != "5000" || q.Get("currency") != "eur" || q.Get("activityID") != "act-scuba" {
			t.Fatalf("unexpected query: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"paymentIntent":"pi_123","ephemeralKey":"ek_123","customer":"cus_123","displayName":"IsleBook"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	intent, err := client.CreateIntent(context.Background(), 5000, "eur", "act-scuba")
	if err != nil {
		t.Fatalf("CreateIntent error: %v", err)
	}
	if intent.PaymentIntent != "pi_123" || intent.Customer != "cus_123" {
		t.Fatalf("unexpected intent: %+v", intent)
	}
}

func TestCreateIntentEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.CreateIntent(context.Background(), 5000, "eur", "act-scuba"); err == nil {
		t.Fatalf("expected error for empty intent")
	}
}

func TestIntentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/paymentIntent/pi_123" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"confirmed"}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	status, err := client.IntentStatus(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("IntentStatus error: %v", err)
	}
	if status != IntentStatusConfirmed {
		t.Fatalf("unexpected status %q", status)
	}

	if _, err := client.IntentStatus(context.Background(), "pi_missing"); !errors.Is(err, ErrIntentNotFound) {
		t.Fatalf("expected ErrIntentNotFound, got %v", err)
	}
}

func TestEphemeralSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ephemeralSecret" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ephemeralKey":"ek_123","customer":"cus_123"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	secret, err := client.EphemeralSecret(context.Background())
	if err != nil {
		t.Fatalf("EphemeralSecret error: %v", err)
	}
	if secret.EphemeralKey != "ek_123" {
		t.Fatalf("unexpected secret: %+v", secret)
	}
}

func TestNilClientIsNotConfigured(t *testing.T) {
	var client *Client
	if _, err := client.CreateIntent(context.Background(), 100, "eur", "a"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := client.EphemeralSecret(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
