package usecase

import (
	"context"
	"errors"
	"strings"

	"gestmed/internal/converter"
	"gestmed/internal/delivery/dto"
	"gestmed/internal/domain/entity"
	"gestmed/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrServiceNotFound       = errors.New("service not found")
	ErrServiceFieldsRequired = errors.New("name and doctor_id are required")
	ErrServiceInUse          = errors.New("cannot delete: service in use")
	ErrServiceDoctorInUse    = errors.New("cannot change doctor: service in use")
	ErrInvalidPrice          = errors.New("price must not be negative")
)

// DoctorLocker serialises writes that depend on a doctor's services.
type DoctorLocker interface {
	WithDoctorLock(ctx context.Context, doctorID int64, fn func(ctx context.Context) error) error
}

type ServiceUsecase interface {
	Create(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	GetAll(ctx context.Context, query *dto.ServiceListQuery) ([]dto.ServiceResponse, error)
	GetByDoctor(ctx context.Context, doctorID int64, isActive *bool) ([]dto.ServiceResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ServiceResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceUsecase struct {
	log             *logrus.Logger
	serviceRepo     repository.ServiceRepository
	appointmentRepo repository.AppointmentRepository
	locker          DoctorLocker
}

func NewServiceUsecase(
	log *logrus.Logger,
	serviceRepo repository.ServiceRepository,
	appointmentRepo repository.AppointmentRepository,
	locker DoctorLocker,
) ServiceUsecase {
	return &serviceUsecase{
		log:             log,
		serviceRepo:     serviceRepo,
		appointmentRepo: appointmentRepo,
		locker:          locker,
	}
}

func (u *serviceUsecase) Create(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	if strings.TrimSpace(req.Name) == "" || req.DoctorID == nil {
		return nil, ErrServiceFieldsRequired
	}

	service := &entity.Service{
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		DurationMinutes:    entity.DefaultServiceDurationMinutes,
		Price:              decimal.Zero,
		DoctorID:           *req.DoctorID,
		IsActive:           true,
		IsExternalBookable: false,
	}
	if req.DurationMinutes != nil {
		service.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		service.Price = *req.Price
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	if req.IsExternalBookable != nil {
		service.IsExternalBookable = *req.IsExternalBookable
	}

	if err := u.serviceRepo.Create(ctx, service); err != nil {
		u.log.Warnf("Failed to create service: %+v", err)
		return nil, err
	}

	u.log.Infof("Service %s created for doctor %d", service.ID, service.DoctorID)
	return converter.ServiceToResponse(service), nil
}

func (u *serviceUsecase) GetAll(ctx context.Context, query *dto.ServiceListQuery) ([]dto.ServiceResponse, error) {
	filter := &entity.ServiceFilter{}
	if query != nil {
		filter.DoctorID = query.DoctorID
		filter.IsActive = query.IsActive
		filter.IsExternalBookable = query.IsExternal
		filter.SortBy = query.SortBy
		filter.SortDesc = strings.EqualFold(query.SortOrder, "desc")
	}

	services, err := u.serviceRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to find services: %+v", err)
		return nil, err
	}
	return converter.ServicesToResponses(services), nil
}

func (u *serviceUsecase) GetByDoctor(ctx context.Context, doctorID int64, isActive *bool) ([]dto.ServiceResponse, error) {
	services, err := u.serviceRepo.FindAll(ctx, &entity.ServiceFilter{
		DoctorID: &doctorID,
		IsActive: isActive,
		SortBy:   entity.ServiceSortName,
	})
	if err != nil {
		u.log.Warnf("Failed to find services for doctor %d: %+v", doctorID, err)
		return nil, err
	}
	return converter.ServicesToResponses(services), nil
}

func (u *serviceUsecase) GetByID(ctx context.Context, id string) (*dto.ServiceResponse, error) {
	service, err := u.serviceRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find service: %+v", err)
		return nil, err
	}
	if service == nil {
		return nil, ErrServiceNotFound
	}
	return converter.ServiceToResponse(service), nil
}

func (u *serviceUsecase) Update(ctx context.Context, id string, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrServiceFieldsRequired
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	for {
		service, err := u.serviceRepo.FindByID(ctx, id)
		if err != nil {
			u.log.Warnf("Failed to find service: %+v", err)
			return nil, err
		}
		if service == nil {
			return nil, ErrServiceNotFound
		}

		// Held on the current owner: bookings for that doctor check is_active and doctor_id under it.
		moved := false
		err = u.locker.WithDoctorLock(ctx, service.DoctorID, func(ctx context.Context) error {
			current, err := u.serviceRepo.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if current == nil {
				return repository.ErrNotFound
			}
			if current.DoctorID != service.DoctorID {
				moved = true
				return nil
			}
			service = current
			return u.applyUpdate(ctx, service, req)
		})
		if moved {
			continue
		}
		switch {
		case err == nil:
			return converter.ServiceToResponse(service), nil
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrServiceNotFound
		case errors.Is(err, ErrServiceDoctorInUse):
			return nil, err
		default:
			u.log.Warnf("Failed to update service: %+v", err)
			return nil, err
		}
	}
}

func (u *serviceUsecase) applyUpdate(ctx context.Context, service *entity.Service, req *dto.UpdateServiceRequest) error {
	if req.DoctorID != nil && *req.DoctorID != service.DoctorID {
		// Existing appointments would point at a service owned by another doctor.
		count, err := u.appointmentRepo.Count(ctx, &entity.AppointmentFilter{ServiceID: service.ID})
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrServiceDoctorInUse
		}
		service.DoctorID = *req.DoctorID
	}

	if req.Name != nil {
		service.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.DurationMinutes != nil {
		service.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	if req.IsExternalBookable != nil {
		service.IsExternalBookable = *req.IsExternalBookable
	}

	return u.serviceRepo.Update(ctx, service)
}

func (u *serviceUsecase) Delete(ctx context.Context, id string) error {
	service, err := u.serviceRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find service: %+v", err)
		return err
	}
	if service == nil {
		return ErrServiceNotFound
	}

	// Same lock as booking, so no appointment can be created between the reference check and the delete.
	err = u.locker.WithDoctorLock(ctx, service.DoctorID, func(ctx context.Context) error {
		return u.serviceRepo.DeleteUnused(ctx, id)
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrServiceInUse):
		return ErrServiceInUse
	case errors.Is(err, repository.ErrNotFound):
		return ErrServiceNotFound
	default:
		u.log.Warnf("Failed to delete service: %+v", err)
		return err
	}

	u.log.Infof("Service %s deleted", id)
	return nil
}
