package usecase

import (
	"context"
	"time"

	"gestmed/internal/converter"
	"gestmed/internal/delivery/dto"
	"gestmed/internal/domain/entity"
	"gestmed/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// recentAppointmentsLimit is the number of upcoming appointments on the dashboard.
const recentAppointmentsLimit = 5

type DashboardUsecase interface {
	Get(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardUsecase struct {
	log             *logrus.Logger
	patientRepo     repository.PatientRepository
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	people          peopleLookup

	now func() time.Time
}

func NewDashboardUsecase(
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
) DashboardUsecase {
	return &dashboardUsecase{
		log:             log,
		patientRepo:     patientRepo,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		people: peopleLookup{
			log:         log,
			patientRepo: patientRepo,
			doctorRepo:  doctorRepo,
		},
		now: time.Now,
	}
}

func (u *dashboardUsecase) Get(ctx context.Context) (*dto.DashboardResponse, error) {
	now := u.now().UTC()
	dayStart, dayEnd := entity.DayBounds(now)

	d := &entity.Dashboard{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		d.TotalPatients, err = u.patientRepo.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.TotalDoctors, err = u.doctorRepo.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.TodayAppointments, err = u.appointmentRepo.Count(gctx, &entity.AppointmentFilter{
			DateFrom: &dayStart,
			DateTo:   &dayEnd,
		})
		return err
	})
	g.Go(func() error {
		var err error
		d.PendingAppointments, err = u.appointmentRepo.Count(gctx, &entity.AppointmentFilter{
			Statuses: []entity.AppointmentStatus{entity.AppointmentStatusPending},
		})
		return err
	})
	g.Go(func() error {
		var err error
		d.RecentAppointments, err = u.appointmentRepo.FindAll(gctx, &entity.AppointmentFilter{
			DateFrom: &now,
			Limit:    recentAppointmentsLimit,
		})
		return err
	})
	g.Go(func() error {
		var err error
		d.AppointmentsByStatus, err = u.appointmentRepo.CountByStatus(gctx, dayStart)
		return err
	})

	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to load dashboard: %+v", err)
		return nil, err
	}

	patients, doctors, err := u.people.resolve(ctx, d.RecentAppointments)
	if err != nil {
		return nil, err
	}

	return converter.DashboardToResponse(d, patients, doctors), nil
}
