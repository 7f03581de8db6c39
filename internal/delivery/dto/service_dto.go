package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request DTOs

// CreateServiceRequest leaves name and doctor_id unvalidated here; the use case
// reports both with a single message.
type CreateServiceRequest struct {
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	DurationMinutes    *int             `json:"duration_minutes" validate:"omitempty,gt=0"`
	Price              *decimal.Decimal `json:"price"`
	DoctorID           *int64           `json:"doctor_id" validate:"omitempty,gt=0"`
	IsActive           *bool            `json:"is_active"`
	IsExternalBookable *bool            `json:"is_external_bookable"`
}

type UpdateServiceRequest struct {
	Name               *string          `json:"name" validate:"omitempty,min=1"`
	Description        *string          `json:"description"`
	DurationMinutes    *int             `json:"duration_minutes" validate:"omitempty,gt=0"`
	Price              *decimal.Decimal `json:"price"`
	DoctorID           *int64           `json:"doctor_id" validate:"omitempty,gt=0"`
	IsActive           *bool            `json:"is_active"`
	IsExternalBookable *bool            `json:"is_external_bookable"`
}

// ServiceListQuery mirrors the list query string.
type ServiceListQuery struct {
	DoctorID   *int64
	IsActive   *bool
	IsExternal *bool
	SortBy     string
	SortOrder  string
}

// Response DTOs

type ServiceResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	DurationMinutes    int       `json:"duration_minutes"`
	Price              float64   `json:"price"`
	DoctorID           int64     `json:"doctor_id"`
	IsActive           bool      `json:"is_active"`
	IsExternalBookable bool      `json:"is_external_bookable"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
