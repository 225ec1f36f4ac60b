package booking

import (
	"islebook-backend/internal/models"
	"islebook-backend/internal/payments"
)

type CreateBookingRequest struct {
	ActivityID string `json:"activityId" validate:"required"`
	Date       string `json:"date" validate:"required,date"`
	Time       string `json:"time" validate:"required,slot"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
}

type RatingRequest struct {
	Stars int `json:"stars" validate:"gte=0,lte=5"`
}

// BookingResponse pairs the pending appointment with everything the client
// payment sheet needs.
type BookingResponse struct {
	Appointment models.Appointment `json:"appointment"`
	Payment     payments.Intent    `json:"payment"`
}

type AvailabilityResponse struct {
	ActivityID string   `json:"activityId"`
	Date       string   `json:"date"`
	Timezone   string   `json:"timezone"`
	Slots      []string `json:"slots"`
}
