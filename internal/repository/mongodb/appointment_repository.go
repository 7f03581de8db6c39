package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"gestmed/internal/domain/entity"
	domainRepo "gestmed/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type appointmentRepository struct {
	appointments *mongo.Collection
}

func NewAppointmentRepository(db *mongo.Database) domainRepo.AppointmentRepository {
	return &appointmentRepository{appointments: db.Collection(appointmentsCollection)}
}

// appointmentQuery translates the filter. ok is false when the filter cannot match anything.
func appointmentQuery(filter *entity.AppointmentFilter) (bson.M, bool) {
	query := bson.M{}
	if filter == nil {
		return query, true
	}

	dateRange := bson.M{}
	if filter.DateFrom != nil {
		dateRange["$gte"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		dateRange["$lte"] = *filter.DateTo
	}
	if len(dateRange) > 0 {
		query["appointment_date"] = dateRange
	}
	if filter.DoctorID != nil {
		query["doctor_id"] = *filter.DoctorID
	}
	if filter.PatientID != nil {
		query["patient_id"] = *filter.PatientID
	}
	if filter.ServiceID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.ServiceID)
		if err != nil {
			return nil, false
		}
		query["service_id"] = oid
	}
	if filter.PatientEmail != "" {
		query["patient_email"] = equalFold(filter.PatientEmail)
	}
	if filter.PatientFiscalCode != "" {
		query["patient_codice_fiscale"] = equalFold(filter.PatientFiscalCode)
	}
	if filter.Code != "" {
		query["code"] = equalFold(filter.Code)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query["status"] = bson.M{"$in": statuses}
	}
	return query, true
}

func equalFold(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}

func joinService() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: servicesCollection},
			{Key: "localField", Value: "service_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "service"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$service"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func (r *appointmentRepository) aggregate(ctx context.Context, match bson.M, limit int) ([]entity.Appointment, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "appointment_date", Value: 1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, joinService()...)

	cursor, err := r.appointments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate appointments: %w", err)
	}

	var views []appointmentView
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}

	appointments := make([]entity.Appointment, 0, len(views))
	for i := range views {
		appointments = append(appointments, views[i].toEntity())
	}
	return appointments, nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	now := time.Now().UTC()
	doc := newAppointmentDocument(appointment)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.appointments.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainRepo.ErrDuplicateCode
		}
		return fmt.Errorf("insert appointment: %w", err)
	}

	appointment.ID = doc.ID.Hex()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	return nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	query, ok := appointmentQuery(filter)
	if !ok {
		return []entity.Appointment{}, nil
	}
	limit := 0
	if filter != nil {
		limit = filter.Limit
	}
	return r.aggregate(ctx, query, limit)
}

func (r *appointmentRepository) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	appointments, err := r.aggregate(ctx, bson.M{"_id": oid}, 1)
	if err != nil {
		return nil, err
	}
	if len(appointments) == 0 {
		return nil, nil
	}
	return &appointments[0], nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	doc := newAppointmentDocument(appointment)
	if doc.ID.IsZero() {
		return domainRepo.ErrNotFound
	}
	doc.UpdatedAt = time.Now().UTC()

	set := bson.M{
		"patient_id":             doc.PatientID,
		"patient_full_name":      doc.PatientFullName,
		"patient_email":          doc.PatientEmail,
		"patient_phone":          doc.PatientPhone,
		"patient_codice_fiscale": doc.PatientFiscalCode,
		"doctor_id":              doc.DoctorID,
		"service_id":             doc.ServiceID,
		"appointment_date":       doc.AppointmentDate,
		"status":                 doc.Status,
		"notes":                  doc.Notes,
		"custom_fields":          doc.CustomFields,
		"updated_at":             doc.UpdatedAt,
	}
	result, err := r.appointments.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update appointment %s: %w", appointment.ID, err)
	}
	if result.MatchedCount == 0 {
		return domainRepo.ErrNotFound
	}
	appointment.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id string, status entity.AppointmentStatus) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	result, err := r.appointments.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return 0, fmt.Errorf("update appointment status %s: %w", id, err)
	}
	return result.MatchedCount, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	result, err := r.appointments.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete appointment %s: %w", id, err)
	}
	return result.DeletedCount, nil
}

func (r *appointmentRepository) Count(ctx context.Context, filter *entity.AppointmentFilter) (int64, error) {
	query, ok := appointmentQuery(filter)
	if !ok {
		return 0, nil
	}
	total, err := r.appointments.CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return total, nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, since time.Time) (map[entity.AppointmentStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"appointment_date": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.appointments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count appointments by status: %w", err)
	}

	var rows []struct {
		Status string `bson:"_id"`
		Total  int64  `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode status counts: %w", err)
	}

	counts := make(map[entity.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[entity.AppointmentStatus(row.Status)] = row.Total
	}
	return counts, nil
}
