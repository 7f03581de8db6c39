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

type appointmentRecord struct {
	ID                int64       `gorm:"primaryKey;autoIncrement"`
	Code              string      `gorm:"type:varchar(8);not null;uniqueIndex"`
	PatientID         *int64      `gorm:"index"`
	PatientFullName   string      `gorm:"type:varchar(255)"`
	PatientEmail      string      `gorm:"type:varchar(255)"`
	PatientPhone      string      `gorm:"type:varchar(50)"`
	PatientFiscalCode string      `gorm:"column:patient_codice_fiscale;type:varchar(32)"`
	DoctorID          int64       `gorm:"not null;index"`
	ServiceID         int64       `gorm:"not null;index"`
	AppointmentDate   time.Time   `gorm:"not null;index"`
	Status            string      `gorm:"type:varchar(20);not null"`
	Notes             string      `gorm:"type:text"`
	CustomFields      entity.JSON `gorm:"type:jsonb"`
	CreatedAt         time.Time   `gorm:"autoCreateTime"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime"`
}

func (appointmentRecord) TableName() string {
	return "appointments"
}

// appointmentRow is an appointment joined with its service.
// Service columns are nullable because the join is a LEFT JOIN.
type appointmentRow struct {
	appointmentRecord
	ServiceName        *string
	ServiceDescription *string
	DurationMinutes    *int
	Price              decimal.NullDecimal
}

func newAppointmentRecord(a *entity.Appointment) *appointmentRecord {
	rec := &appointmentRecord{
		Code:              a.Code,
		PatientID:         a.PatientID,
		PatientFullName:   a.PatientFullName,
		PatientEmail:      a.PatientEmail,
		PatientPhone:      a.PatientPhone,
		PatientFiscalCode: a.PatientFiscalCode,
		DoctorID:          a.DoctorID,
		AppointmentDate:   a.AppointmentDate,
		Status:            string(a.Status),
		Notes:             a.Notes,
		CustomFields:      a.CustomFields,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if id, ok := parseID(a.ID); ok {
		rec.ID = id
	}
	if serviceID, ok := parseID(a.ServiceID); ok {
		rec.ServiceID = serviceID
	}
	return rec
}

func (rec *appointmentRecord) toEntity() entity.Appointment {
	return entity.Appointment{
		ID:                formatID(rec.ID),
		Code:              rec.Code,
		PatientID:         rec.PatientID,
		PatientFullName:   rec.PatientFullName,
		PatientEmail:      rec.PatientEmail,
		PatientPhone:      rec.PatientPhone,
		PatientFiscalCode: rec.PatientFiscalCode,
		DoctorID:          rec.DoctorID,
		ServiceID:         formatID(rec.ServiceID),
		AppointmentDate:   rec.AppointmentDate,
		Status:            entity.AppointmentStatus(rec.Status),
		Notes:             rec.Notes,
		CustomFields:      rec.CustomFields,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

func (row *appointmentRow) toEntity() entity.Appointment {
	appointment := row.appointmentRecord.toEntity()
	if row.ServiceName != nil {
		appointment.ServiceName = *row.ServiceName
	}
	if row.ServiceDescription != nil {
		appointment.ServiceDescription = *row.ServiceDescription
	}
	if row.DurationMinutes != nil {
		appointment.DurationMinutes = *row.DurationMinutes
	}
	if row.Price.Valid {
		appointment.Price = row.Price.Decimal
	}
	return appointment
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("appointments AS a").
		Select("a.*, s.name AS service_name, s.description AS service_description, s.duration_minutes, s.price").
		Joins("LEFT JOIN services s ON s.id = a.service_id")
}

func applyAppointmentFilter(query *gorm.DB, filter *entity.AppointmentFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.DateFrom != nil {
		query = query.Where("a.appointment_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("a.appointment_date <= ?", *filter.DateTo)
	}
	if filter.DoctorID != nil {
		query = query.Where("a.doctor_id = ?", *filter.DoctorID)
	}
	if filter.PatientID != nil {
		query = query.Where("a.patient_id = ?", *filter.PatientID)
	}
	if filter.ServiceID != "" {
		serviceID, ok := parseID(filter.ServiceID)
		if !ok {
			return query.Where("1 = 0")
		}
		query = query.Where("a.service_id = ?", serviceID)
	}
	if filter.PatientEmail != "" {
		query = query.Where("LOWER(a.patient_email) = LOWER(?)", filter.PatientEmail)
	}
	if filter.PatientFiscalCode != "" {
		query = query.Where("LOWER(a.patient_codice_fiscale) = LOWER(?)", filter.PatientFiscalCode)
	}
	if filter.Code != "" {
		query = query.Where("LOWER(a.code) = LOWER(?)", filter.Code)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query = query.Where("a.status IN ?", statuses)
	}
	return query
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	rec := newAppointmentRecord(appointment)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainRepo.ErrDuplicateCode
		}
		return err
	}
	appointment.ID = formatID(rec.ID)
	appointment.CreatedAt = rec.CreatedAt
	appointment.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	query := applyAppointmentFilter(r.joined(ctx), filter).Order("a.appointment_date ASC")
	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []appointmentRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	appointments := make([]entity.Appointment, 0, len(rows))
	for i := range rows {
		appointments = append(appointments, rows[i].toEntity())
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	var rows []appointmentRow
	if err := r.joined(ctx).Where("a.id = ?", key).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	appointment := rows[0].toEntity()
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	rec := newAppointmentRecord(appointment)
	if rec.ID == 0 {
		return domainRepo.ErrNotFound
	}
	rec.UpdatedAt = time.Now()
	// never inserts; a row deleted meanwhile reports ErrNotFound
	result := r.db.WithContext(ctx).Model(&appointmentRecord{}).
		Where("id = ?", rec.ID).
		Select("*").Omit("id", "created_at").
		Updates(rec)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	appointment.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id string, status entity.AppointmentStatus) (int64, error) {
	key, ok := parseID(id)
	if !ok {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&appointmentRecord{}).Where("id = ?", key).Update("status", string(status))
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) (int64, error) {
	key, ok := parseID(id)
	if !ok {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id = ?", key).Delete(&appointmentRecord{})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) Count(ctx context.Context, filter *entity.AppointmentFilter) (int64, error) {
	var total int64
	query := applyAppointmentFilter(r.db.WithContext(ctx).Table("appointments AS a"), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return total, nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, since time.Time) (map[entity.AppointmentStatus]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Table("appointments").
		Select("status, COUNT(*) AS total").
		Where("appointment_date >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count appointments by status: %w", err)
	}

	counts := make(map[entity.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[entity.AppointmentStatus(row.Status)] = row.Total
	}
	return counts, nil
}
