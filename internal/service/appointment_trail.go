package service

import (
	"context"
	"fmt"

	"gestmed/internal/domain/entity"
	"gestmed/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// AppointmentTrail appends server-generated entries to an appointment's alive log.
type AppointmentTrail interface {
	LogStatusChange(ctx context.Context, appointment *entity.Appointment, from, to entity.AppointmentStatus) error
}

type appointmentTrail struct {
	log          *logrus.Logger
	aliveLogRepo repository.AliveLogRepository
}

func NewAppointmentTrail(log *logrus.Logger, aliveLogRepo repository.AliveLogRepository) AppointmentTrail {
	return &appointmentTrail{
		log:          log,
		aliveLogRepo: aliveLogRepo,
	}
}

// LogStatusChange records a status transition
func (s *appointmentTrail) LogStatusChange(ctx context.Context, appointment *entity.Appointment, from, to entity.AppointmentStatus) error {
	entry := &entity.AliveLog{
		AppointmentID: appointment.ID,
		Code:          appointment.Code,
		Title:         entity.AliveLogTitleStatusChanged,
		Description:   fmt.Sprintf("Status changed from %s to %s", from, to),
	}

	if err := s.aliveLogRepo.Create(ctx, entry); err != nil {
		s.log.Warnf("Failed to append status change to alive log: %+v", err)
		return err
	}

	return nil
}
