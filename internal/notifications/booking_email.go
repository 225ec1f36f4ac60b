package notifications

import (
	"bytes"
	"fmt"
	"html/template"

	"islebook-backend/internal/models"
)

const bookingConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hi {{.Name}},</p>
  <p>Your booking is confirmed. Here are the details:</p>
  <ul>
    <li>Activity: {{.ActivityTitle}}</li>
    <li>Location: {{.Location}}</li>
    <li>Date: {{.Date}}</li>
    <li>Time: {{.Time}}</li>
    <li>Duration: {{.DurationMinutes}} minutes</li>
    <li>Price: {{.Price}}</li>
    <li>Booking reference: {{.AppointmentID}}</li>
  </ul>
  <p>Please arrive ten minutes before the start. See you there!</p>
</body>
</html>`

var bookingConfirmationTmpl = template.Must(template.New("booking_confirmation").Parse(bookingConfirmationTemplate))

type bookingConfirmationData struct {
	Name            string
	ActivityTitle   string
	Location        string
	Date            string
	Time            string
	DurationMinutes int
	Price           string
	AppointmentID   string
}

func buildBookingConfirmationHTML(appointment models.Appointment, activity models.Activity) (string, error) {
	data := bookingConfirmationData{
		Name:            appointment.CustomerName,
		ActivityTitle:   activity.Title,
		Location:        activity.Location,
		Date:            appointment.Date,
		Time:            appointment.Time,
		DurationMinutes: activity.Duration,
		Price:           fmt.Sprintf("%.2f EUR", appointment.Price),
		AppointmentID:   appointment.ID,
	}
	var buf bytes.Buffer
	if err := bookingConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
