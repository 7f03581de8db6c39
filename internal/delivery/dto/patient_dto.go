package dto

import "time"

// Request DTOs

type CreatePatientRequest struct {
	Name           string  `json:"name" validate:"required,min=2"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Phone          string  `json:"phone" validate:"omitempty,max=50"`
	FiscalCode     string  `json:"fiscal_code" validate:"omitempty,max=32"`
	DateOfBirth    *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Address        string  `json:"address"`
	MedicalHistory string  `json:"medical_history"`
}

type UpdatePatientRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=50"`
	FiscalCode     *string `json:"fiscal_code" validate:"omitempty,max=32"`
	DateOfBirth    *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Address        *string `json:"address"`
	MedicalHistory *string `json:"medical_history"`
}

// Response DTOs

type PatientResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	FiscalCode     string    `json:"fiscal_code,omitempty"`
	DateOfBirth    string    `json:"date_of_birth,omitempty"`
	Address        string    `json:"address"`
	MedicalHistory string    `json:"medical_history"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
