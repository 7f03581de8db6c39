package dto

import "time"

// Request DTOs

type CreateDoctorRequest struct {
	Name           string                 `json:"name" validate:"required,min=2"`
	Email          string                 `json:"email" validate:"omitempty,email"`
	Phone          string                 `json:"phone" validate:"omitempty,max=50"`
	Specialization string                 `json:"specialization" validate:"omitempty,max=100"`
	LicenseNumber  string                 `json:"license_number" validate:"omitempty,max=50"`
	Availability   map[string]interface{} `json:"availability"`
	IsAvailable    *bool                  `json:"is_available"`
}

type UpdateDoctorRequest struct {
	Name           *string                `json:"name" validate:"omitempty,min=2"`
	Email          *string                `json:"email" validate:"omitempty,email"`
	Phone          *string                `json:"phone" validate:"omitempty,max=50"`
	Specialization *string                `json:"specialization" validate:"omitempty,max=100"`
	LicenseNumber  *string                `json:"license_number" validate:"omitempty,max=50"`
	Availability   map[string]interface{} `json:"availability"`
	IsAvailable    *bool                  `json:"is_available"`
}

// Response DTOs

type DoctorResponse struct {
	ID             int64                  `json:"id"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Phone          string                 `json:"phone"`
	Specialization string                 `json:"specialization"`
	LicenseNumber  string                 `json:"license_number"`
	Availability   map[string]interface{} `json:"availability"`
	IsAvailable    bool                   `json:"is_available"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}
