package memory

import (
	"context"
	"sort"
	"strings"

	"gestmed/internal/domain/entity"
	domainRepo "gestmed/internal/domain/repository"
)

type serviceRepository struct {
	store *Store
}

func NewServiceRepository(store *Store) domainRepo.ServiceRepository {
	return &serviceRepository{store: store}
}

func (r *serviceRepository) Create(_ context.Context, service *entity.Service) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	service.ID = s.nextStringID()
	service.CreatedAt = now
	service.UpdatedAt = now
	s.services[service.ID] = *service
	return nil
}

func (r *serviceRepository) FindAll(_ context.Context, filter *entity.ServiceFilter) ([]entity.Service, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	services := make([]entity.Service, 0, len(s.services))
	for _, svc := range s.services {
		if filter.Matches(&svc) {
			services = append(services, svc)
		}
	}

	field := filter.NormalizedSort()
	desc := filter != nil && filter.SortDesc
	sort.SliceStable(services, func(i, j int) bool {
		c := compareServices(&services[i], &services[j], field)
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return strings.Compare(services[i].Name, services[j].Name) < 0
	})
	return services, nil
}

func compareServices(a, b *entity.Service, field string) int {
	switch field {
	case entity.ServiceSortName:
		return strings.Compare(a.Name, b.Name)
	case entity.ServiceSortPrice:
		return a.Price.Cmp(b.Price)
	case entity.ServiceSortDurationMinutes:
		return compareInt64(int64(a.DurationMinutes), int64(b.DurationMinutes))
	case entity.ServiceSortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return compareInt64(a.DoctorID, b.DoctorID)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (r *serviceRepository) FindByID(_ context.Context, id string) (*entity.Service, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, nil
	}
	return &svc, nil
}

func (r *serviceRepository) FindByIDs(_ context.Context, ids []string) ([]entity.Service, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var services []entity.Service
	for _, id := range ids {
		if svc, ok := s.services[id]; ok {
			services = append(services, svc)
		}
	}
	return services, nil
}

func (r *serviceRepository) Update(_ context.Context, service *entity.Service) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[service.ID]; !ok {
		return domainRepo.ErrNotFound
	}
	service.UpdatedAt = s.now()
	s.services[service.ID] = *service
	return nil
}

func (r *serviceRepository) DeleteUnused(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[id]; !ok {
		return domainRepo.ErrNotFound
	}
	for _, a := range s.appointments {
		if a.ServiceID == id {
			return domainRepo.ErrServiceInUse
		}
	}
	delete(s.services, id)
	return nil
}
