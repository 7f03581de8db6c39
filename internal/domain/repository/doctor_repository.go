package repository

import (
	"context"

	"gestmed/internal/domain/entity"
)

type DoctorRepository interface {
	Create(ctx context.Context, doctor *entity.Doctor) error
	FindAll(ctx context.Context, search string) ([]entity.Doctor, error)
	FindByID(ctx context.Context, id int64) (*entity.Doctor, error)
	FindByIDs(ctx context.Context, ids []int64) ([]entity.Doctor, error)
	Update(ctx context.Context, doctor *entity.Doctor) error
	Delete(ctx context.Context, id int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}
