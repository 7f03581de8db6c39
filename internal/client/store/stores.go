package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"gestmed/internal/delivery/dto"
	"gestmed/pkg/apiclient"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// API is the part of apiclient.Client the stores call.
type API interface {
	ListPatients(ctx context.Context, search string) ([]dto.PatientResponse, error)
	CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error)
	UpdatePatient(ctx context.Context, id int64, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
	DeletePatient(ctx context.Context, id int64) error

	ListDoctors(ctx context.Context, search string) ([]dto.DoctorResponse, error)
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	UpdateDoctor(ctx context.Context, id int64, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, id int64) error

	ListServices(ctx context.Context, filter apiclient.ServiceFilter) ([]dto.ServiceResponse, error)
	CreateService(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	UpdateService(ctx context.Context, id string, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	DeleteService(ctx context.Context, id string) error

	ListAppointments(ctx context.Context, filter apiclient.AppointmentFilter) ([]dto.AppointmentResponse, error)
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateAppointment(ctx context.Context, id string, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateAppointmentStatus(ctx context.Context, id, status string) (*dto.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, id string) error
}

var _ API = (*apiclient.Client)(nil)

// Stores holds the client-side collections and derives views from them.
type Stores struct {
	api API
	log *logrus.Logger
	now func() time.Time

	Patients     *Collection[dto.PatientResponse]
	Doctors      *Collection[dto.DoctorResponse]
	Services     *Collection[dto.ServiceResponse]
	Appointments *Collection[dto.AppointmentResponse]

	mu        sync.Mutex
	dashboard *Dashboard
	seen      [3]uint64
	seenDay   time.Time
}

func New(api API, log *logrus.Logger, now func() time.Time) *Stores {
	if now == nil {
		now = time.Now
	}
	s := &Stores{api: api, log: log, now: now}

	s.Patients = NewCollection[dto.PatientResponse](PatientsTTL, func(ctx context.Context) ([]dto.PatientResponse, error) {
		return api.ListPatients(apiclient.WithoutCache(ctx), "")
	}, func(p dto.PatientResponse) string { return strconv.FormatInt(p.ID, 10) }, now)

	s.Doctors = NewCollection[dto.DoctorResponse](DoctorsTTL, func(ctx context.Context) ([]dto.DoctorResponse, error) {
		return api.ListDoctors(apiclient.WithoutCache(ctx), "")
	}, func(d dto.DoctorResponse) string { return strconv.FormatInt(d.ID, 10) }, now)

	s.Services = NewCollection[dto.ServiceResponse](ServicesTTL, func(ctx context.Context) ([]dto.ServiceResponse, error) {
		return api.ListServices(apiclient.WithoutCache(ctx), apiclient.ServiceFilter{})
	}, func(svc dto.ServiceResponse) string { return svc.ID }, now)

	s.Appointments = NewCollection[dto.AppointmentResponse](AppointmentsTTL, func(ctx context.Context) ([]dto.AppointmentResponse, error) {
		return api.ListAppointments(apiclient.WithoutCache(ctx), apiclient.AppointmentFilter{})
	}, func(a dto.AppointmentResponse) string { return a.ID }, now)

	return s
}

// EnsureRelated refreshes stale patients and doctors so appointments can be enriched.
func (s *Stores) EnsureRelated(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.Patients.IsStale() {
		g.Go(func() error {
			_, err := s.Patients.Fetch(ctx, false)
			return err
		})
	}
	if s.Doctors.IsStale() {
		g.Go(func() error {
			_, err := s.Doctors.Fetch(ctx, false)
			return err
		})
	}
	return g.Wait()
}

// FetchAppointments loads related data first, then returns the enriched appointments.
func (s *Stores) FetchAppointments(ctx context.Context, force bool) ([]EnrichedAppointment, error) {
	if err := s.EnsureRelated(ctx); err != nil {
		s.log.Warnf("Failed to load patients and doctors: %+v", err)
		return nil, err
	}
	if _, err := s.Appointments.Fetch(ctx, force); err != nil {
		s.log.Warnf("Failed to fetch appointments: %+v", err)
		return nil, err
	}
	return s.Enriched(), nil
}

// Appointments

func (s *Stores) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appt, err := s.api.CreateAppointment(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Appointments.Add(*appt)
	s.invalidateDashboard()
	return appt, nil
}

func (s *Stores) UpdateAppointment(ctx context.Context, id string, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appt, err := s.api.UpdateAppointment(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.Appointments.Replace(*appt)
	s.invalidateDashboard()
	return appt, nil
}

func (s *Stores) UpdateAppointmentStatus(ctx context.Context, id, status string) (*dto.AppointmentResponse, error) {
	appt, err := s.api.UpdateAppointmentStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.Appointments.Replace(*appt)
	s.invalidateDashboard()
	return appt, nil
}

func (s *Stores) DeleteAppointment(ctx context.Context, id string) error {
	if err := s.api.DeleteAppointment(ctx, id); err != nil {
		return err
	}
	s.Appointments.Remove(id)
	s.invalidateDashboard()
	return nil
}

// Patients

func (s *Stores) CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	patient, err := s.api.CreatePatient(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Patients.Add(*patient)
	return patient, nil
}

func (s *Stores) UpdatePatient(ctx context.Context, id int64, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	patient, err := s.api.UpdatePatient(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.Patients.Replace(*patient)
	return patient, nil
}

func (s *Stores) DeletePatient(ctx context.Context, id int64) error {
	if err := s.api.DeletePatient(ctx, id); err != nil {
		return err
	}
	s.Patients.Remove(strconv.FormatInt(id, 10))
	return nil
}

// Doctors

func (s *Stores) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	doctor, err := s.api.CreateDoctor(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Doctors.Add(*doctor)
	return doctor, nil
}

func (s *Stores) UpdateDoctor(ctx context.Context, id int64, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	doctor, err := s.api.UpdateDoctor(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.Doctors.Replace(*doctor)
	return doctor, nil
}

func (s *Stores) DeleteDoctor(ctx context.Context, id int64) error {
	if err := s.api.DeleteDoctor(ctx, id); err != nil {
		return err
	}
	s.Doctors.Remove(strconv.FormatInt(id, 10))
	return nil
}

// Services

func (s *Stores) CreateService(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	svc, err := s.api.CreateService(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Services.Add(*svc)
	return svc, nil
}

func (s *Stores) UpdateService(ctx context.Context, id string, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	svc, err := s.api.UpdateService(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.Services.Replace(*svc)
	return svc, nil
}

func (s *Stores) DeleteService(ctx context.Context, id string) error {
	if err := s.api.DeleteService(ctx, id); err != nil {
		return err
	}
	s.Services.Remove(id)
	return nil
}

// ActiveServicesFor returns the doctor's active services from the cached list.
func (s *Stores) ActiveServicesFor(doctorID int64) []dto.ServiceResponse {
	var out []dto.ServiceResponse
	for _, svc := range s.Services.Items() {
		if svc.DoctorID == doctorID && svc.IsActive {
			out = append(out, svc)
		}
	}
	return out
}
