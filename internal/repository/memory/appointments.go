package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"gestmed/internal/domain/entity"
	domainRepo "gestmed/internal/domain/repository"
)

type appointmentRepository struct {
	store *Store
}

func NewAppointmentRepository(store *Store) domainRepo.AppointmentRepository {
	return &appointmentRepository{store: store}
}

func (r *appointmentRepository) Create(_ context.Context, appointment *entity.Appointment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.appointments {
		if strings.EqualFold(existing.Code, appointment.Code) {
			return domainRepo.ErrDuplicateCode
		}
	}

	now := s.now()
	appointment.ID = s.nextStringID()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	appointment.CustomFields = copyJSON(appointment.CustomFields)
	s.appointments[appointment.ID] = *appointment
	return nil
}

func (r *appointmentRepository) FindAll(_ context.Context, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	appointments := make([]entity.Appointment, 0)
	for _, a := range s.appointments {
		if filter.Matches(&a) {
			appointments = append(appointments, s.joinService(a))
		}
	}
	sort.SliceStable(appointments, func(i, j int) bool {
		if !appointments[i].AppointmentDate.Equal(appointments[j].AppointmentDate) {
			return appointments[i].AppointmentDate.Before(appointments[j].AppointmentDate)
		}
		return idLess(appointments[i].ID, appointments[j].ID)
	})
	if filter != nil && filter.Limit > 0 && len(appointments) > filter.Limit {
		appointments = appointments[:filter.Limit]
	}
	return appointments, nil
}

func idLess(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA != nil || errB != nil {
		return a < b
	}
	return na < nb
}

func (r *appointmentRepository) FindByID(_ context.Context, id string) (*entity.Appointment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, nil
	}
	joined := s.joinService(a)
	return &joined, nil
}

func (r *appointmentRepository) Update(_ context.Context, appointment *entity.Appointment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[appointment.ID]; !ok {
		return domainRepo.ErrNotFound
	}
	appointment.UpdatedAt = s.now()
	stored := *appointment
	stored.CustomFields = copyJSON(appointment.CustomFields)
	s.appointments[appointment.ID] = stored
	return nil
}

func (r *appointmentRepository) UpdateStatus(_ context.Context, id string, status entity.AppointmentStatus) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return 0, nil
	}
	a.Status = status
	a.UpdatedAt = s.now()
	s.appointments[id] = a
	return 1, nil
}

func (r *appointmentRepository) Delete(_ context.Context, id string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[id]; !ok {
		return 0, nil
	}
	// alive logs outlive the appointment
	delete(s.appointments, id)
	return 1, nil
}

func (r *appointmentRepository) Count(_ context.Context, filter *entity.AppointmentFilter) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, a := range s.appointments {
		if filter.Matches(&a) {
			total++
		}
	}
	return total, nil
}

func (r *appointmentRepository) CountByStatus(_ context.Context, since time.Time) (map[entity.AppointmentStatus]int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[entity.AppointmentStatus]int64)
	for _, a := range s.appointments {
		if !a.AppointmentDate.Before(since) {
			counts[a.Status]++
		}
	}
	return counts, nil
}
