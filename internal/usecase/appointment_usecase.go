package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"gestmed/internal/converter"
	"gestmed/internal/delivery/dto"
	"gestmed/internal/domain/entity"
	"gestmed/internal/domain/repository"
	"gestmed/internal/service"
	"gestmed/pkg/apptcode"

	"github.com/sirupsen/logrus"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrServiceNotAvailable = errors.New("service not available for this doctor")
	ErrPatientRequired     = errors.New("patient_id or patient_full_name is required")
	ErrStatusRequired      = errors.New("status is required")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidDateRange    = errors.New("end_date must not be before start_date")
	ErrCodeGeneration      = errors.New("could not generate a unique appointment code")
)

// maxCodeAttempts bounds code regeneration after unique index collisions.
const maxCodeAttempts = 5

type AppointmentUsecase interface {
	Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAll(ctx context.Context, query *dto.AppointmentListQuery) ([]dto.AppointmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	Delete(ctx context.Context, id string) error
	GetBusySlots(ctx context.Context, doctorID int64, query *dto.BusySlotQuery) ([]dto.BusySlotResponse, error)
}

type appointmentUsecase struct {
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	serviceRepo     repository.ServiceRepository
	locker          DoctorLocker
	trail           service.AppointmentTrail

	newCode func() string
	now     func() time.Time
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	serviceRepo repository.ServiceRepository,
	locker DoctorLocker,
	trail service.AppointmentTrail,
) AppointmentUsecase {
	return &appointmentUsecase{
		log:             log,
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		locker:          locker,
		trail:           trail,
		newCode:         apptcode.Generate,
		now:             time.Now,
	}
}

// checkService verifies that serviceID is an active service owned by doctorID.
func (u *appointmentUsecase) checkService(ctx context.Context, serviceID string, doctorID int64) error {
	svc, err := u.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		u.log.Warnf("Failed to find service: %+v", err)
		return err
	}
	if !svc.BookableBy(doctorID) {
		return ErrServiceNotAvailable
	}
	return nil
}

func parseStatus(value string) (entity.AppointmentStatus, error) {
	status := entity.AppointmentStatus(strings.TrimSpace(value))
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (u *appointmentUsecase) Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if req.PatientID == nil && strings.TrimSpace(req.PatientFullName) == "" {
		return nil, ErrPatientRequired
	}

	status := entity.AppointmentStatusScheduled
	if req.Status != "" {
		s, err := parseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = s
	}

	appointment := &entity.Appointment{
		PatientID:         req.PatientID,
		PatientFullName:   strings.TrimSpace(req.PatientFullName),
		PatientEmail:      req.PatientEmail,
		PatientPhone:      req.PatientPhone,
		PatientFiscalCode: strings.ToUpper(req.PatientFiscalCode),
		DoctorID:          req.DoctorID,
		ServiceID:         req.ServiceID.String(),
		AppointmentDate:   req.AppointmentDate.UTC(),
		Status:            status,
		Notes:             req.Notes,
		CustomFields:      entity.JSON(req.CustomFields),
	}

	err := u.locker.WithDoctorLock(ctx, appointment.DoctorID, func(ctx context.Context) error {
		if err := u.checkService(ctx, appointment.ServiceID, appointment.DoctorID); err != nil {
			return err
		}
		return u.insertWithCode(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment %s created with code %s", appointment.ID, appointment.Code)
	return u.reload(ctx, appointment.ID)
}

// insertWithCode assigns a fresh code and retries while the unique index rejects it.
func (u *appointmentUsecase) insertWithCode(ctx context.Context, appointment *entity.Appointment) error {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		appointment.Code = u.newCode()

		err := u.appointmentRepo.Create(ctx, appointment)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateCode) {
			u.log.Warnf("Failed to create appointment: %+v", err)
			return err
		}
		u.log.Warnf("Appointment code %s already taken, attempt %d", appointment.Code, attempt)
	}
	return ErrCodeGeneration
}

func (u *appointmentUsecase) reload(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) GetAll(ctx context.Context, query *dto.AppointmentListQuery) ([]dto.AppointmentResponse, error) {
	filter := &entity.AppointmentFilter{}
	if query != nil {
		if query.Date != nil {
			from, to := entity.DayBounds(*query.Date)
			filter.DateFrom, filter.DateTo = &from, &to
		}
		filter.DoctorID = query.DoctorID
		filter.PatientID = query.PatientID
		filter.ServiceID = query.ServiceID
		filter.PatientEmail = query.PatientEmail
		filter.PatientFiscalCode = query.PatientFiscalCode
		filter.Code = query.Code
		if query.Status != "" {
			filter.Statuses = []entity.AppointmentStatus{entity.AppointmentStatus(query.Status)}
		}
	}

	appointments, err := u.appointmentRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return nil, err
	}
	return converter.AppointmentsToResponses(appointments), nil
}

func (u *appointmentUsecase) GetByID(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	return u.reload(ctx, id)
}

func (u *appointmentUsecase) Update(ctx context.Context, id string, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	previousStatus := appointment.Status
	if req.Status != nil {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		appointment.Status = status
	}

	pairChanged := false
	if req.DoctorID != nil && *req.DoctorID != appointment.DoctorID {
		appointment.DoctorID = *req.DoctorID
		pairChanged = true
	}
	if req.ServiceID != nil && req.ServiceID.String() != appointment.ServiceID {
		appointment.ServiceID = req.ServiceID.String()
		pairChanged = true
	}

	if req.PatientID != nil {
		appointment.PatientID = req.PatientID
	}
	if req.PatientFullName != nil {
		appointment.PatientFullName = strings.TrimSpace(*req.PatientFullName)
	}
	if req.PatientEmail != nil {
		appointment.PatientEmail = *req.PatientEmail
	}
	if req.PatientPhone != nil {
		appointment.PatientPhone = *req.PatientPhone
	}
	if req.PatientFiscalCode != nil {
		appointment.PatientFiscalCode = strings.ToUpper(*req.PatientFiscalCode)
	}
	if req.AppointmentDate != nil {
		appointment.AppointmentDate = req.AppointmentDate.UTC()
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	if req.CustomFields != nil {
		appointment.CustomFields = entity.JSON(req.CustomFields)
	}

	if appointment.PatientID == nil && appointment.PatientFullName == "" {
		return nil, ErrPatientRequired
	}

	save := func(ctx context.Context) error {
		if pairChanged {
			if err := u.checkService(ctx, appointment.ServiceID, appointment.DoctorID); err != nil {
				return err
			}
		}
		return u.appointmentRepo.Update(ctx, appointment)
	}

	if pairChanged {
		err = u.locker.WithDoctorLock(ctx, appointment.DoctorID, save)
	} else {
		err = save(ctx)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		if !errors.Is(err, ErrServiceNotAvailable) {
			u.log.Warnf("Failed to update appointment: %+v", err)
		}
		return nil, err
	}

	if appointment.Status != previousStatus {
		// The trail logs its own failures; the update itself is already stored.
		_ = u.trail.LogStatusChange(ctx, appointment, previousStatus, appointment.Status)
	}

	return u.reload(ctx, appointment.ID)
}

func (u *appointmentUsecase) UpdateStatus(ctx context.Context, id string, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	if strings.TrimSpace(req.Status) == "" {
		return nil, ErrStatusRequired
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	affected, err := u.appointmentRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		u.log.Warnf("Failed to update appointment status: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAppointmentNotFound
	}

	if appointment.Status != status {
		_ = u.trail.LogStatusChange(ctx, appointment, appointment.Status, status)
	}

	u.log.Infof("Appointment %s status set to %s", id, status)
	return u.reload(ctx, id)
}

func (u *appointmentUsecase) Delete(ctx context.Context, id string) error {
	affected, err := u.appointmentRepo.Delete(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to delete appointment: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrAppointmentNotFound
	}

	u.log.Infof("Appointment %s deleted", id)
	return nil
}

func (u *appointmentUsecase) GetBusySlots(ctx context.Context, doctorID int64, query *dto.BusySlotQuery) ([]dto.BusySlotResponse, error) {
	filter := &entity.AppointmentFilter{
		DoctorID: &doctorID,
		Statuses: entity.BusyStatuses,
	}

	switch {
	case query != nil && query.StartDate != nil && query.EndDate != nil:
		if query.EndDate.Before(*query.StartDate) {
			return nil, ErrInvalidDateRange
		}
		filter.DateFrom, filter.DateTo = query.StartDate, query.EndDate
	case query != nil && query.Date != nil:
		from, to := entity.DayBounds(*query.Date)
		filter.DateFrom, filter.DateTo = &from, &to
	default:
		now := u.now()
		filter.DateFrom = &now
	}

	appointments, err := u.appointmentRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to find busy slots for doctor %d: %+v", doctorID, err)
		return nil, err
	}

	return converter.BusySlotsToResponses(entity.BusySlotsFrom(appointments)), nil
}
