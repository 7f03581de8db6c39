package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"

	// AppointmentStatusPending is a legacy value still present in older records.
	// It is counted by the dashboard but can no longer be set.
	AppointmentStatusPending AppointmentStatus = "pending"
)

// AllowedAppointmentStatuses is the set a client may assign.
var AllowedAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusInProgress,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
}

// BusyStatuses are the statuses that keep a doctor unavailable.
var BusyStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusInProgress,
}

// IsValid checks the status against AllowedAppointmentStatuses
func (s AppointmentStatus) IsValid() bool {
	for _, allowed := range AllowedAppointmentStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// IsBusy checks if the status blocks the doctor's calendar
func (s AppointmentStatus) IsBusy() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusInProgress
}

// Appointment is a booking of a service with a doctor.
// Patient identification is either PatientID or the denormalised patient fields.
// Service* fields are read-only and filled by repositories from the referenced service.
type Appointment struct {
	ID                string
	Code              string
	PatientID         *int64
	PatientFullName   string
	PatientEmail      string
	PatientPhone      string
	PatientFiscalCode string
	DoctorID          int64
	ServiceID         string
	AppointmentDate   time.Time
	Status            AppointmentStatus
	Notes             string
	CustomFields      JSON
	CreatedAt         time.Time
	UpdatedAt         time.Time

	ServiceName        string
	ServiceDescription string
	DurationMinutes    int
	Price              decimal.Decimal
}

// EffectiveDuration returns the service duration, or the default when it is unknown.
func (a *Appointment) EffectiveDuration() time.Duration {
	minutes := a.DurationMinutes
	if minutes <= 0 {
		minutes = DefaultServiceDurationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// EndsAt returns the end of the busy window.
func (a *Appointment) EndsAt() time.Time {
	return a.AppointmentDate.Add(a.EffectiveDuration())
}

// AppointmentFilter is a domain-level filter for querying appointments.
// DateFrom and DateTo are inclusive.
type AppointmentFilter struct {
	DateFrom          *time.Time
	DateTo            *time.Time
	DoctorID          *int64
	PatientID         *int64
	ServiceID         string
	PatientEmail      string
	PatientFiscalCode string
	Code              string
	Statuses          []AppointmentStatus
	Limit             int
}

// Matches applies the filter to a single appointment.
func (f *AppointmentFilter) Matches(a *Appointment) bool {
	if f == nil {
		return true
	}
	if f.DateFrom != nil && a.AppointmentDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && a.AppointmentDate.After(*f.DateTo) {
		return false
	}
	if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
		return false
	}
	if f.PatientID != nil && (a.PatientID == nil || *a.PatientID != *f.PatientID) {
		return false
	}
	if f.ServiceID != "" && a.ServiceID != f.ServiceID {
		return false
	}
	if f.PatientEmail != "" && !strings.EqualFold(a.PatientEmail, f.PatientEmail) {
		return false
	}
	if f.PatientFiscalCode != "" && !strings.EqualFold(a.PatientFiscalCode, f.PatientFiscalCode) {
		return false
	}
	if f.Code != "" && !strings.EqualFold(a.Code, f.Code) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if a.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// DayBounds returns the inclusive bounds of the calendar day containing t, in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24*time.Hour - time.Microsecond)
}
