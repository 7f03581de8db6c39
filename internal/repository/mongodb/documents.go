package mongodb

import (
	"time"

	"gestmed/internal/domain/entity"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	servicesCollection     = "services"
	appointmentsCollection = "appointments"
	aliveLogsCollection    = "alive_logs"
)

type serviceDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Name               string             `bson:"name"`
	Description        string             `bson:"description"`
	DurationMinutes    int                `bson:"duration_minutes"`
	Price              float64            `bson:"price"`
	DoctorID           int64              `bson:"doctor_id"`
	IsActive           bool               `bson:"is_active"`
	IsExternalBookable bool               `bson:"is_external_bookable"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

func newServiceDocument(s *entity.Service) serviceDocument {
	doc := serviceDocument{
		Name:               s.Name,
		Description:        s.Description,
		DurationMinutes:    s.DurationMinutes,
		Price:              s.Price.InexactFloat64(),
		DoctorID:           s.DoctorID,
		IsActive:           s.IsActive,
		IsExternalBookable: s.IsExternalBookable,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if id, err := primitive.ObjectIDFromHex(s.ID); err == nil {
		doc.ID = id
	}
	return doc
}

func (d *serviceDocument) toEntity() entity.Service {
	return entity.Service{
		ID:                 d.ID.Hex(),
		Name:               d.Name,
		Description:        d.Description,
		DurationMinutes:    d.DurationMinutes,
		Price:              decimal.NewFromFloat(d.Price),
		DoctorID:           d.DoctorID,
		IsActive:           d.IsActive,
		IsExternalBookable: d.IsExternalBookable,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type appointmentDocument struct {
	ID                primitive.ObjectID     `bson:"_id,omitempty"`
	Code              string                 `bson:"code"`
	PatientID         *int64                 `bson:"patient_id,omitempty"`
	PatientFullName   string                 `bson:"patient_full_name,omitempty"`
	PatientEmail      string                 `bson:"patient_email,omitempty"`
	PatientPhone      string                 `bson:"patient_phone,omitempty"`
	PatientFiscalCode string                 `bson:"patient_codice_fiscale,omitempty"`
	DoctorID          int64                  `bson:"doctor_id"`
	ServiceID         primitive.ObjectID     `bson:"service_id"`
	AppointmentDate   time.Time              `bson:"appointment_date"`
	Status            string                 `bson:"status"`
	Notes             string                 `bson:"notes"`
	CustomFields      map[string]interface{} `bson:"custom_fields,omitempty"`
	CreatedAt         time.Time              `bson:"created_at"`
	UpdatedAt         time.Time              `bson:"updated_at"`
}

// appointmentView is the result of the $lookup join on services.
type appointmentView struct {
	appointmentDocument `bson:",inline"`
	Service             *serviceDocument `bson:"service,omitempty"`
}

func newAppointmentDocument(a *entity.Appointment) appointmentDocument {
	doc := appointmentDocument{
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
	if id, err := primitive.ObjectIDFromHex(a.ID); err == nil {
		doc.ID = id
	}
	if serviceID, err := primitive.ObjectIDFromHex(a.ServiceID); err == nil {
		doc.ServiceID = serviceID
	}
	return doc
}

func (d *appointmentDocument) toEntity() entity.Appointment {
	return entity.Appointment{
		ID:                d.ID.Hex(),
		Code:              d.Code,
		PatientID:         d.PatientID,
		PatientFullName:   d.PatientFullName,
		PatientEmail:      d.PatientEmail,
		PatientPhone:      d.PatientPhone,
		PatientFiscalCode: d.PatientFiscalCode,
		DoctorID:          d.DoctorID,
		ServiceID:         d.ServiceID.Hex(),
		AppointmentDate:   d.AppointmentDate,
		Status:            entity.AppointmentStatus(d.Status),
		Notes:             d.Notes,
		CustomFields:      entity.JSON(d.CustomFields),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (v *appointmentView) toEntity() entity.Appointment {
	appointment := v.appointmentDocument.toEntity()
	if v.Service != nil {
		appointment.ServiceName = v.Service.Name
		appointment.ServiceDescription = v.Service.Description
		appointment.DurationMinutes = v.Service.DurationMinutes
		appointment.Price = decimal.NewFromFloat(v.Service.Price)
	}
	return appointment
}

type aliveLogDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	AppointmentID string             `bson:"appointment_id"`
	Code          string             `bson:"code,omitempty"`
	Title         string             `bson:"title"`
	Description   string             `bson:"description"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (d *aliveLogDocument) toEntity() entity.AliveLog {
	return entity.AliveLog{
		ID:            d.ID.Hex(),
		AppointmentID: d.AppointmentID,
		Code:          d.Code,
		Title:         d.Title,
		Description:   d.Description,
		CreatedAt:     d.CreatedAt,
	}
}
