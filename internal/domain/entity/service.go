package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultServiceDurationMinutes = 30

// Service is a bookable offering owned by one doctor.
type Service struct {
	ID                 string
	Name               string
	Description        string
	DurationMinutes    int
	Price              decimal.Decimal
	DoctorID           int64
	IsActive           bool
	IsExternalBookable bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BookableBy reports whether an appointment for doctorID may reference this service.
func (s *Service) BookableBy(doctorID int64) bool {
	return s != nil && s.IsActive && s.DoctorID == doctorID
}

// Service list sort fields. Anything else falls back to ServiceSortDoctorID.
const (
	ServiceSortName            = "name"
	ServiceSortDoctorID        = "doctor_id"
	ServiceSortPrice           = "price"
	ServiceSortDurationMinutes = "duration_minutes"
	ServiceSortCreatedAt       = "created_at"
)

// ServiceFilter is a domain-level filter for listing services.
type ServiceFilter struct {
	DoctorID           *int64
	IsActive           *bool
	IsExternalBookable *bool
	SortBy             string
	SortDesc           bool
}

// NormalizedSort returns the whitelisted sort field.
func (f *ServiceFilter) NormalizedSort() string {
	if f == nil {
		return ServiceSortDoctorID
	}
	switch f.SortBy {
	case ServiceSortName, ServiceSortDoctorID, ServiceSortPrice, ServiceSortDurationMinutes, ServiceSortCreatedAt:
		return f.SortBy
	default:
		return ServiceSortDoctorID
	}
}

// Matches applies the filter to a single service.
func (f *ServiceFilter) Matches(s *Service) bool {
	if f == nil {
		return true
	}
	if f.DoctorID != nil && s.DoctorID != *f.DoctorID {
		return false
	}
	if f.IsActive != nil && s.IsActive != *f.IsActive {
		return false
	}
	if f.IsExternalBookable != nil && s.IsExternalBookable != *f.IsExternalBookable {
		return false
	}
	return true
}
