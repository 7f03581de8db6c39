package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestmed/internal/domain/entity"
	domainRepo "gestmed/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type serviceRepository struct {
	services     *mongo.Collection
	appointments *mongo.Collection
}

func NewServiceRepository(db *mongo.Database) domainRepo.ServiceRepository {
	return &serviceRepository{
		services:     db.Collection(servicesCollection),
		appointments: db.Collection(appointmentsCollection),
	}
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	now := time.Now().UTC()
	doc := newServiceDocument(service)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.services.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	*service = doc.toEntity()
	return nil
}

func (r *serviceRepository) FindAll(ctx context.Context, filter *entity.ServiceFilter) ([]entity.Service, error) {
	query := bson.M{}
	if filter != nil {
		if filter.DoctorID != nil {
			query["doctor_id"] = *filter.DoctorID
		}
		if filter.IsActive != nil {
			query["is_active"] = *filter.IsActive
		}
		if filter.IsExternalBookable != nil {
			query["is_external_bookable"] = *filter.IsExternalBookable
		}
	}

	direction := 1
	if filter != nil && filter.SortDesc {
		direction = -1
	}
	sortField := filter.NormalizedSort()
	sort := bson.D{{Key: sortField, Value: direction}}
	if sortField != entity.ServiceSortName {
		sort = append(sort, bson.E{Key: "name", Value: 1})
	}

	cursor, err := r.services.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find services: %w", err)
	}
	return decodeServices(ctx, cursor)
}

func (r *serviceRepository) FindByID(ctx context.Context, id string) (*entity.Service, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc serviceDocument
	if err := r.services.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find service %s: %w", id, err)
	}
	service := doc.toEntity()
	return &service, nil
}

func (r *serviceRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Service, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}

	cursor, err := r.services.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find services: %w", err)
	}
	return decodeServices(ctx, cursor)
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	doc := newServiceDocument(service)
	if doc.ID.IsZero() {
		return domainRepo.ErrNotFound
	}
	doc.UpdatedAt = time.Now().UTC()

	result, err := r.services.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"name":                 doc.Name,
		"description":          doc.Description,
		"duration_minutes":     doc.DurationMinutes,
		"price":                doc.Price,
		"doctor_id":            doc.DoctorID,
		"is_active":            doc.IsActive,
		"is_external_bookable": doc.IsExternalBookable,
		"updated_at":           doc.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update service %s: %w", service.ID, err)
	}
	if result.MatchedCount == 0 {
		return domainRepo.ErrNotFound
	}
	service.UpdatedAt = doc.UpdatedAt
	return nil
}

// DeleteUnused has no transaction on standalone deployments; callers serialise it
// with appointment writes for the owning doctor.
func (r *serviceRepository) DeleteUnused(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domainRepo.ErrNotFound
	}

	inUse, err := r.appointments.CountDocuments(ctx, bson.M{"service_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count appointments for service %s: %w", id, err)
	}
	if inUse > 0 {
		return domainRepo.ErrServiceInUse
	}

	result, err := r.services.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete service %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func decodeServices(ctx context.Context, cursor *mongo.Cursor) ([]entity.Service, error) {
	var docs []serviceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}

	services := make([]entity.Service, 0, len(docs))
	for i := range docs {
		services = append(services, docs[i].toEntity())
	}
	return services, nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return oids
}
