package dto

import "time"

type CreateAliveLogRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code" validate:"omitempty,max=8"`
}

type AliveLogResponse struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	Code          string    `json:"code,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}
