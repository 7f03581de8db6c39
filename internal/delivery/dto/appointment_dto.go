package dto

import "time"

// Request DTOs

// CreateAppointmentRequest needs patient_id or patient_full_name; the use case checks it.
type CreateAppointmentRequest struct {
	PatientID         *int64                 `json:"patient_id" validate:"omitempty,gt=0"`
	PatientFullName   string                 `json:"patient_full_name" validate:"max=255"`
	PatientEmail      string                 `json:"patient_email" validate:"omitempty,email"`
	PatientPhone      string                 `json:"patient_phone" validate:"omitempty,max=50"`
	PatientFiscalCode string                 `json:"patient_codice_fiscale" validate:"omitempty,max=32"`
	DoctorID          int64                  `json:"doctor_id" validate:"required,gt=0"`
	ServiceID         ID                     `json:"service_id" validate:"required"`
	AppointmentDate   *time.Time             `json:"appointment_date" validate:"required"`
	Status            string                 `json:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled"`
	Notes             string                 `json:"notes"`
	CustomFields      map[string]interface{} `json:"custom_fields"`
}

// UpdateAppointmentRequest is a whitelist; nil fields keep the stored value.
type UpdateAppointmentRequest struct {
	PatientID         *int64                 `json:"patient_id" validate:"omitempty,gt=0"`
	PatientFullName   *string                `json:"patient_full_name" validate:"omitempty,max=255"`
	PatientEmail      *string                `json:"patient_email" validate:"omitempty,email"`
	PatientPhone      *string                `json:"patient_phone" validate:"omitempty,max=50"`
	PatientFiscalCode *string                `json:"patient_codice_fiscale" validate:"omitempty,max=32"`
	DoctorID          *int64                 `json:"doctor_id" validate:"omitempty,gt=0"`
	ServiceID         *ID                    `json:"service_id"`
	AppointmentDate   *time.Time             `json:"appointment_date"`
	Status            *string                `json:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled"`
	Notes             *string                `json:"notes"`
	CustomFields      map[string]interface{} `json:"custom_fields"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status"`
}

// AppointmentListQuery mirrors the list query string.
type AppointmentListQuery struct {
	Date              *time.Time
	DoctorID          *int64
	PatientID         *int64
	ServiceID         string
	PatientEmail      string
	PatientFiscalCode string
	Code              string
	Status            string
}

// BusySlotQuery selects the window for busy slots. Range wins over Date.
type BusySlotQuery struct {
	Date      *time.Time
	StartDate *time.Time
	EndDate   *time.Time
}

// Response DTOs

type AppointmentResponse struct {
	ID                 string                 `json:"id"`
	Code               string                 `json:"code"`
	PatientID          *int64                 `json:"patient_id"`
	PatientFullName    string                 `json:"patient_full_name"`
	PatientEmail       string                 `json:"patient_email"`
	PatientPhone       string                 `json:"patient_phone"`
	PatientFiscalCode  string                 `json:"patient_codice_fiscale"`
	DoctorID           int64                  `json:"doctor_id"`
	ServiceID          string                 `json:"service_id"`
	AppointmentDate    time.Time              `json:"appointment_date"`
	Status             string                 `json:"status"`
	Notes              string                 `json:"notes"`
	CustomFields       map[string]interface{} `json:"custom_fields,omitempty"`
	ServiceName        string                 `json:"service_name,omitempty"`
	ServiceDescription string                 `json:"service_description,omitempty"`
	DurationMinutes    int                    `json:"duration_minutes,omitempty"`
	Price              float64                `json:"price"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// ActiveAppointmentResponse is an appointment enriched with patient and doctor names.
type ActiveAppointmentResponse struct {
	AppointmentResponse
	PatientName          string `json:"patient_name,omitempty"`
	DoctorName           string `json:"doctor_name,omitempty"`
	DoctorSpecialization string `json:"doctor_specialization,omitempty"`
}

type BusySlotResponse struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
