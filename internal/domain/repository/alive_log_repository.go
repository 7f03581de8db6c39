package repository

import (
	"context"

	"gestmed/internal/domain/entity"
)

type AliveLogRepository interface {
	Create(ctx context.Context, log *entity.AliveLog) error
	// FindByAppointmentID and FindByCode return newest first.
	FindByAppointmentID(ctx context.Context, appointmentID string) ([]entity.AliveLog, error)
	FindByCode(ctx context.Context, code string) ([]entity.AliveLog, error)
}
