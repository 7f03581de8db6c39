package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestmed/internal/domain/entity"
	domainRepo "gestmed/internal/domain/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type serviceRecord struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement"`
	Name               string          `gorm:"type:varchar(255);not null"`
	Description        string          `gorm:"type:text;not null;default:''"`
	DurationMinutes    int             `gorm:"not null;default:30"`
	Price              decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	DoctorID           int64           `gorm:"not null;index"`
	IsActive           bool            `gorm:"not null"`
	IsExternalBookable bool            `gorm:"not null"`
	CreatedAt          time.Time       `gorm:"autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime"`
}

func (serviceRecord) TableName() string {
	return "services"
}

func newServiceRecord(s *entity.Service) *serviceRecord {
	rec := &serviceRecord{
		Name:               s.Name,
		Description:        s.Description,
		DurationMinutes:    s.DurationMinutes,
		Price:              s.Price,
		DoctorID:           s.DoctorID,
		IsActive:           s.IsActive,
		IsExternalBookable: s.IsExternalBookable,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if id, ok := parseID(s.ID); ok {
		rec.ID = id
	}
	return rec
}

func (rec *serviceRecord) toEntity() entity.Service {
	return entity.Service{
		ID:                 formatID(rec.ID),
		Name:               rec.Name,
		Description:        rec.Description,
		DurationMinutes:    rec.DurationMinutes,
		Price:              rec.Price,
		DoctorID:           rec.DoctorID,
		IsActive:           rec.IsActive,
		IsExternalBookable: rec.IsExternalBookable,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

type serviceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) domainRepo.ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	rec := newServiceRecord(service)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}
	*service = rec.toEntity()
	return nil
}

func (r *serviceRepository) FindAll(ctx context.Context, filter *entity.ServiceFilter) ([]entity.Service, error) {
	query := r.db.WithContext(ctx).Model(&serviceRecord{})

	if filter != nil {
		if filter.DoctorID != nil {
			query = query.Where("doctor_id = ?", *filter.DoctorID)
		}
		if filter.IsActive != nil {
			query = query.Where("is_active = ?", *filter.IsActive)
		}
		if filter.IsExternalBookable != nil {
			query = query.Where("is_external_bookable = ?", *filter.IsExternalBookable)
		}
	}

	// sort is whitelisted by NormalizedSort
	sort := filter.NormalizedSort()
	direction := "ASC"
	if filter != nil && filter.SortDesc {
		direction = "DESC"
	}
	order := fmt.Sprintf("%s %s", sort, direction)
	if sort != entity.ServiceSortName {
		order += ", name ASC"
	}

	var records []serviceRecord
	if err := query.Order(order).Find(&records).Error; err != nil {
		return nil, err
	}

	services := make([]entity.Service, 0, len(records))
	for i := range records {
		services = append(services, records[i].toEntity())
	}
	return services, nil
}

func (r *serviceRepository) FindByID(ctx context.Context, id string) (*entity.Service, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	var rec serviceRecord
	err := r.db.WithContext(ctx).Where("id = ?", key).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	service := rec.toEntity()
	return &service, nil
}

func (r *serviceRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Service, error) {
	keys := parseIDs(ids)
	if len(keys) == 0 {
		return nil, nil
	}

	var records []serviceRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", keys).Find(&records).Error; err != nil {
		return nil, err
	}

	services := make([]entity.Service, 0, len(records))
	for i := range records {
		services = append(services, records[i].toEntity())
	}
	return services, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	rec := newServiceRecord(service)
	if rec.ID == 0 {
		return domainRepo.ErrNotFound
	}
	rec.UpdatedAt = time.Now()
	// never inserts; a row deleted meanwhile reports ErrNotFound
	result := r.db.WithContext(ctx).Model(&serviceRecord{}).
		Where("id = ?", rec.ID).
		Select("*").Omit("id", "created_at").
		Updates(rec)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	*service = rec.toEntity()
	return nil
}

// DeleteUnused counts references and deletes inside one transaction.
// The services foreign key on appointments backs this up for writers that bypass the guard.
func (r *serviceRepository) DeleteUnused(ctx context.Context, id string) error {
	key, ok := parseID(id)
	if !ok {
		return domainRepo.ErrNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&appointmentRecord{}).Where("service_id = ?", key).Count(&inUse).Error; err != nil {
			return fmt.Errorf("count appointments for service %d: %w", key, err)
		}
		if inUse > 0 {
			return domainRepo.ErrServiceInUse
		}

		result := tx.Where("id = ?", key).Delete(&serviceRecord{})
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
				return domainRepo.ErrServiceInUse
			}
			return fmt.Errorf("delete service %d: %w", key, result.Error)
		}
		if result.RowsAffected == 0 {
			return domainRepo.ErrNotFound
		}
		return nil
	})
}
