package entity

import "time"

// AliveLog is an append-only event attached to an appointment.
type AliveLog struct {
	ID            string
	AppointmentID string
	Code          string
	Title         string
	Description   string
	CreatedAt     time.Time
}

// Titles of entries written by the server itself.
const (
	AliveLogTitleStatusChanged = "Status changed"
)
