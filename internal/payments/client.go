// Package payments talks to the hosted payment function that mints payment
// intents and ephemeral keys for the mobile payment sheet. The provider is an
// external collaborator; only its HTTP contract lives here.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	IntentStatusCreated   = "created"
	IntentStatusConfirmed = "confirmed"
	IntentStatusFailed    = "failed"
)

var (
	ErrNotConfigured  = errors.New("payments provider not configured")
	ErrIntentNotFound = errors.New("payment intent not found")
)

// Intent carries everything the payment sheet needs to present itself.
type Intent struct {
	PaymentIntent string `json:"paymentIntent"`
	EphemeralKey  string `json:"ephemeralKey"`
	Customer      string `json:"customer"`
	DisplayName   string `json:"displayName"`
}

type EphemeralSecret struct {
	EphemeralKey string `json:"ephemeralKey"`
	Customer     string `json:"customer"`
}

type Provider interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, activityID string) (Intent, error)
	IntentStatus(ctx context.Context, intentID string) (string, error)
	EphemeralSecret(ctx context.Context) (EphemeralSecret, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		return nil
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

// MinorUnits converts a decimal price to the provider's integer amount,
// e.g. 50.00 EUR -> 5000.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, currency, activityID string) (Intent, error) {
	if c == nil {
		return Intent{}, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("price", strconv.FormatInt(amountMinor, 10))
	q.Set("currency", currency)
	q.Set("activityID", activityID)

	var intent Intent
	if err := c.getJSON(ctx, c.baseURL+"/paymentIntent?"+q.Encode(), &intent); err != nil {
		return Intent{}, err
	}
	if intent.PaymentIntent == "" {
		return Intent{}, errors.New("payments: empty intent in response")
	}
	return intent, nil
}

func (c *Client) IntentStatus(ctx context.Context, intentID string) (string, error) {
	if c == nil {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(intentID) == "" {
		return "", ErrIntentNotFound
	}

	var out struct {
		Status string `json:"status"`
	}
	err := c.getJSON(ctx, c.baseURL+"/paymentIntent/"+url.PathEscape(intentID), &out)
	if err != nil {
		var httpErr *statusError
		if errors.As(err, &httpErr) && httpErr.code == http.StatusNotFound {
			return "", ErrIntentNotFound
		}
		return "", err
	}
	return out.Status, nil
}

func (c *Client) EphemeralSecret(ctx context.Context) (EphemeralSecret, error) {
	if c == nil {
		return EphemeralSecret{}, ErrNotConfigured
	}

	var secret EphemeralSecret
	if err := c.getJSON(ctx, c.baseURL+"/ephemeralSecret", &secret); err != nil {
		return EphemeralSecret{}, err
	}
	return secret, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("payments: status=%d body=%s", e.code, e.body)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("payments create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payments request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("payments decode response: %w", err)
	}
	return nil
}
