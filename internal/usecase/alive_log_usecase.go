package usecase

import (
	"context"
	"errors"
	"strings"

	"gestmed/internal/converter"
	"gestmed/internal/delivery/dto"
	"gestmed/internal/domain/entity"
	"gestmed/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrAliveLogFieldsRequired = errors.New("title and description are required")
)

type AliveLogUsecase interface {
	GetActive(ctx context.Context) ([]dto.ActiveAppointmentResponse, error)
	GetByAppointment(ctx context.Context, appointmentID string) ([]dto.AliveLogResponse, error)
	GetByCode(ctx context.Context, code string) ([]dto.AliveLogResponse, error)
	Create(ctx context.Context, appointmentID string, req *dto.CreateAliveLogRequest) (*dto.AliveLogResponse, error)
}

type aliveLogUsecase struct {
	log             *logrus.Logger
	aliveLogRepo    repository.AliveLogRepository
	appointmentRepo repository.AppointmentRepository
	people          peopleLookup
}

func NewAliveLogUsecase(
	log *logrus.Logger,
	aliveLogRepo repository.AliveLogRepository,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
) AliveLogUsecase {
	return &aliveLogUsecase{
		log:             log,
		aliveLogRepo:    aliveLogRepo,
		appointmentRepo: appointmentRepo,
		people: peopleLookup{
			log:         log,
			patientRepo: patientRepo,
			doctorRepo:  doctorRepo,
		},
	}
}

// GetActive lists scheduled and in-progress appointments, earliest first.
func (u *aliveLogUsecase) GetActive(ctx context.Context) ([]dto.ActiveAppointmentResponse, error) {
	appointments, err := u.appointmentRepo.FindAll(ctx, &entity.AppointmentFilter{
		Statuses: entity.BusyStatuses,
	})
	if err != nil {
		u.log.Warnf("Failed to find active appointments: %+v", err)
		return nil, err
	}

	patients, doctors, err := u.people.resolve(ctx, appointments)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentsToActiveResponses(appointments, patients, doctors), nil
}

func (u *aliveLogUsecase) GetByAppointment(ctx context.Context, appointmentID string) ([]dto.AliveLogResponse, error) {
	logs, err := u.aliveLogRepo.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find alive logs: %+v", err)
		return nil, err
	}
	return converter.AliveLogsToResponses(logs), nil
}

func (u *aliveLogUsecase) GetByCode(ctx context.Context, code string) ([]dto.AliveLogResponse, error) {
	logs, err := u.aliveLogRepo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		u.log.Warnf("Failed to find alive logs by code: %+v", err)
		return nil, err
	}
	return converter.AliveLogsToResponses(logs), nil
}

func (u *aliveLogUsecase) Create(ctx context.Context, appointmentID string, req *dto.CreateAliveLogRequest) (*dto.AliveLogResponse, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, ErrAliveLogFieldsRequired
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		code = appointment.Code
	}

	entry := &entity.AliveLog{
		AppointmentID: appointment.ID,
		Code:          code,
		Title:         req.Title,
		Description:   req.Description,
	}
	if err := u.aliveLogRepo.Create(ctx, entry); err != nil {
		u.log.Warnf("Failed to create alive log: %+v", err)
		return nil, err
	}

	u.log.Infof("Alive log %s added to appointment %s", entry.ID, appointment.ID)
	return converter.AliveLogToResponse(entry), nil
}
