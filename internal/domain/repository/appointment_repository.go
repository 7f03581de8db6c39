package repository

import (
	"context"
	"time"

	"gestmed/internal/domain/entity"
)

// AppointmentRepository returns appointments joined with their service fields.
type AppointmentRepository interface {
	// Create assigns ID and timestamps. It returns ErrDuplicateCode when the code is taken.
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindAll(ctx context.Context, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	FindByID(ctx context.Context, id string) (*entity.Appointment, error)
	Update(ctx context.Context, appointment *entity.Appointment) error
	UpdateStatus(ctx context.Context, id string, status entity.AppointmentStatus) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	Count(ctx context.Context, filter *entity.AppointmentFilter) (int64, error)
	CountByStatus(ctx context.Context, since time.Time) (map[entity.AppointmentStatus]int64, error)
}
