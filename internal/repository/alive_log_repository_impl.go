package repository

import (
	"context"
	"time"

	"gestmed/internal/domain/entity"
	domainRepo "gestmed/internal/domain/repository"

	"gorm.io/gorm"
)

type aliveLogRecord struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	AppointmentID int64     `gorm:"not null;index"`
	Code          string    `gorm:"type:varchar(8);index"`
	Title         string    `gorm:"type:varchar(255);not null"`
	Description   string    `gorm:"type:text;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (aliveLogRecord) TableName() string {
	return "alive_logs"
}

func (rec *aliveLogRecord) toEntity() entity.AliveLog {
	return entity.AliveLog{
		ID:            formatID(rec.ID),
		AppointmentID: formatID(rec.AppointmentID),
		Code:          rec.Code,
		Title:         rec.Title,
		Description:   rec.Description,
		CreatedAt:     rec.CreatedAt,
	}
}

type aliveLogRepository struct {
	db *gorm.DB
}

func NewAliveLogRepository(db *gorm.DB) domainRepo.AliveLogRepository {
	return &aliveLogRepository{db: db}
}

func (r *aliveLogRepository) Create(ctx context.Context, log *entity.AliveLog) error {
	appointmentID, ok := parseID(log.AppointmentID)
	if !ok {
		return domainRepo.ErrNotFound
	}

	rec := &aliveLogRecord{
		AppointmentID: appointmentID,
		Code:          log.Code,
		Title:         log.Title,
		Description:   log.Description,
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}
	*log = rec.toEntity()
	return nil
}

func (r *aliveLogRepository) FindByAppointmentID(ctx context.Context, appointmentID string) ([]entity.AliveLog, error) {
	key, ok := parseID(appointmentID)
	if !ok {
		return []entity.AliveLog{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("appointment_id = ?", key))
}

func (r *aliveLogRepository) FindByCode(ctx context.Context, code string) ([]entity.AliveLog, error) {
	return r.find(r.db.WithContext(ctx).Where("code = ?", code))
}

func (r *aliveLogRepository) find(query *gorm.DB) ([]entity.AliveLog, error) {
	var records []aliveLogRecord
	if err := query.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}

	logs := make([]entity.AliveLog, 0, len(records))
	for i := range records {
		logs = append(logs, records[i].toEntity())
	}
	return logs, nil
}
