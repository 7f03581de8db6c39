package repository

import (
	"context"

	"gestmed/internal/domain/entity"
)

type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	FindAll(ctx context.Context, filter *entity.ServiceFilter) ([]entity.Service, error)
	// FindByID returns nil, nil when the service does not exist.
	FindByID(ctx context.Context, id string) (*entity.Service, error)
	FindByIDs(ctx context.Context, ids []string) ([]entity.Service, error)
	Update(ctx context.Context, service *entity.Service) error
	// DeleteUnused removes the service only when no appointment references it.
	// It returns ErrServiceInUse or ErrNotFound otherwise.
	DeleteUnused(ctx context.Context, id string) error
}
