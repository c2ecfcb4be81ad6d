package domain

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// ValidAppointmentStatus reports whether s is one of the known statuses.
func ValidAppointmentStatus(s string) bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// Appointment is a service appointment request submitted by a visitor.
// Creation is open to anyone; everything else is admin-only.
type Appointment struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CustomerName string    `json:"customer_name" db:"customer_name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	ServiceType  string    `json:"service_type" db:"service_type"`
	Location     string    `json:"location" db:"location"`
	Date         string    `json:"date" db:"date"`
	Time         string    `json:"time" db:"time"`
	Message      string    `json:"message,omitempty" db:"message"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Lead is a contact-form submission. Visitor-created, admin-read.
type Lead struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
