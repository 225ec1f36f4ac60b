package notifications

import (
	"errors"
	"fmt"
	"strings"

	"islebook-backend/internal/models"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSClient sends short booking confirmations over Twilio. Like the mailer
// it is optional: a nil client means SMS is disabled.
type SMSClient struct {
	client *twilio.RestClient
	from   string
}

func NewSMSClient(accountSID, authToken, from string) *SMSClient {
	if strings.TrimSpace(accountSID) == "" || strings.TrimSpace(authToken) == "" || strings.TrimSpace(from) == "" {
		return nil
	}
	return &SMSClient{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (c *SMSClient) SendBookingConfirmation(to string, appointment models.Appointment, activity models.Activity) (string, error) {
	if c == nil {
		return "", errors.New("sms client is nil")
	}
	if strings.TrimSpace(to) == "" {
		return "", errors.New("missing recipient number")
	}

	body := fmt.Sprintf("Your booking for %s on %s at %s is confirmed. Ref %s.",
		activity.Title, appointment.Date, appointment.Time, appointment.ID)

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio send failed: %w", err)
	}
	if resp.Sid == nil {
		return "", errors.New("twilio response missing sid")
	}
	return *resp.Sid, nil
}
