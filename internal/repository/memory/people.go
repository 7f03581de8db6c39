package memory

import (
	"context"
	"time"

	"gestmed/internal/domain/entity"
	domainRepo "gestmed/internal/domain/repository"
)

type patientRepository struct {
	store *Store
}

func NewPatientRepository(store *Store) domainRepo.PatientRepository {
	return &patientRepository{store: store}
}

func (r *patientRepository) Create(_ context.Context, patient *entity.Patient) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	patient.ID = s.nextID()
	patient.CreatedAt = now
	patient.UpdatedAt = now
	s.patients[patient.ID] = *patient
	return nil
}

func (r *patientRepository) FindAll(_ context.Context, search string) ([]entity.Patient, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	patients := make([]entity.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		if search == "" || containsFold(p.Name, search) || containsFold(p.Email, search) || containsFold(p.Phone, search) {
			patients = append(patients, p)
		}
	}
	newestFirst(patients,
		func(p entity.Patient) time.Time { return p.CreatedAt },
		func(p entity.Patient) int64 { return p.ID })
	return patients, nil
}

func (r *patientRepository) FindByID(_ context.Context, id int64) (*entity.Patient, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *patientRepository) FindByIDs(_ context.Context, ids []int64) ([]entity.Patient, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var patients []entity.Patient
	for _, id := range ids {
		if p, ok := s.patients[id]; ok {
			patients = append(patients, p)
		}
	}
	return patients, nil
}

func (r *patientRepository) Update(_ context.Context, patient *entity.Patient) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[patient.ID]; !ok {
		return domainRepo.ErrNotFound
	}
	patient.UpdatedAt = s.now()
	s.patients[patient.ID] = *patient
	return nil
}

func (r *patientRepository) Delete(_ context.Context, id int64) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[id]; !ok {
		return 0, nil
	}
	delete(s.patients, id)
	return 1, nil
}

func (r *patientRepository) Count(_ context.Context) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.patients)), nil
}

type doctorRepository struct {
	store *Store
}

func NewDoctorRepository(store *Store) domainRepo.DoctorRepository {
	return &doctorRepository{store: store}
}

func (r *doctorRepository) Create(_ context.Context, doctor *entity.Doctor) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	doctor.ID = s.nextID()
	doctor.CreatedAt = now
	doctor.UpdatedAt = now
	doctor.Availability = copyJSON(doctor.Availability)
	s.doctors[doctor.ID] = *doctor
	return nil
}

func (r *doctorRepository) FindAll(_ context.Context, search string) ([]entity.Doctor, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	doctors := make([]entity.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		if search == "" || containsFold(d.Name, search) || containsFold(d.Specialization, search) || containsFold(d.Email, search) {
			doctors = append(doctors, d)
		}
	}
	newestFirst(doctors,
		func(d entity.Doctor) time.Time { return d.CreatedAt },
		func(d entity.Doctor) int64 { return d.ID })
	return doctors, nil
}

func (r *doctorRepository) FindByID(_ context.Context, id int64) (*entity.Doctor, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.doctors[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *doctorRepository) FindByIDs(_ context.Context, ids []int64) ([]entity.Doctor, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doctors []entity.Doctor
	for _, id := range ids {
		if d, ok := s.doctors[id]; ok {
			doctors = append(doctors, d)
		}
	}
	return doctors, nil
}

func (r *doctorRepository) Update(_ context.Context, doctor *entity.Doctor) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doctors[doctor.ID]; !ok {
		return domainRepo.ErrNotFound
	}
	doctor.UpdatedAt = s.now()
	doctor.Availability = copyJSON(doctor.Availability)
	s.doctors[doctor.ID] = *doctor
	return nil
}

func (r *doctorRepository) Delete(_ context.Context, id int64) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doctors[id]; !ok {
		return 0, nil
	}
	delete(s.doctors, id)
	return 1, nil
}

func (r *doctorRepository) Count(_ context.Context) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.doctors)), nil
}
