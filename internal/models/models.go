package models

import "time"

const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCanceled  = "canceled"
)

// Activity is a bookable tourism offering. Rating and NumberOfReviews form a
// running average maintained by the feedback flow; nothing else mutates them.
type Activity struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	Title           string    `bson:"title" json:"title"`
	Description     string    `bson:"description" json:"description"`
	Duration        int       `bson:"duration" json:"duration"`
	Price           float64   `bson:"price" json:"price"`
	Location        string    `bson:"location" json:"location"`
	ManagerName     string    `bson:"managerName" json:"managerName"`
	ManagerEmail    string    `bson:"managerEmail" json:"managerEmail"`
	Rating          float64   `bson:"rating" json:"rating"`
	NumberOfReviews int       `bson:"numberOfReviews" json:"numberOfReviews"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

// Appointment is a customer's reservation of an Activity hour slot. The
// document id is <customerEmail>-<unix millis at creation>; the customer
// email is the natural key used throughout, not an auth-provider id.
type Appointment struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	ActivityID    string    `bson:"activityId" json:"activityId"`
	CustomerEmail string    `bson:"customerEmail" json:"customerEmail"`
	CustomerName  string    `bson:"customerName" json:"customerName"`
	CustomerPhone string    `bson:"customerPhone,omitempty" json:"customerPhone,omitempty"`
	Price         float64   `bson:"price" json:"price"`
	Status        string    `bson:"status" json:"status"`
	Date          string    `bson:"date" json:"date"`
	Time          string    `bson:"time" json:"time"`
	PaymentIntent string    `bson:"paymentIntent,omitempty" json:"paymentIntent,omitempty"`
	Rating        *int      `bson:"rating,omitempty" json:"rating,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	FirstName    string    `bson:"firstName" json:"firstName"`
	LastName     string    `bson:"lastName" json:"lastName"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

type Message struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	ActivityID  string    `bson:"activityId" json:"activityId"`
	SenderEmail string    `bson:"senderEmail" json:"senderEmail"`
	SenderName  string    `bson:"senderName" json:"senderName"`
	Body        string    `bson:"body" json:"body"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
