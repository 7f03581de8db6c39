package repository

import (
	"context"

	"gestmed/internal/domain/entity"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *entity.Patient) error
	FindAll(ctx context.Context, search string) ([]entity.Patient, error)
	FindByID(ctx context.Context, id int64) (*entity.Patient, error)
	FindByIDs(ctx context.Context, ids []int64) ([]entity.Patient, error)
	Update(ctx context.Context, patient *entity.Patient) error
	Delete(ctx context.Context, id int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}
