package mongodb

import (
	"context"
	"fmt"
	"time"

	"gestmed/internal/domain/entity"
	domainRepo "gestmed/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type aliveLogRepository struct {
	logs *mongo.Collection
}

func NewAliveLogRepository(db *mongo.Database) domainRepo.AliveLogRepository {
	return &aliveLogRepository{logs: db.Collection(aliveLogsCollection)}
}

func (r *aliveLogRepository) Create(ctx context.Context, log *entity.AliveLog) error {
	doc := aliveLogDocument{
		ID:            primitive.NewObjectID(),
		AppointmentID: log.AppointmentID,
		Code:          log.Code,
		Title:         log.Title,
		Description:   log.Description,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := r.logs.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert alive log: %w", err)
	}
	*log = doc.toEntity()
	return nil
}

func (r *aliveLogRepository) FindByAppointmentID(ctx context.Context, appointmentID string) ([]entity.AliveLog, error) {
	return r.find(ctx, bson.M{"appointment_id": appointmentID})
}

func (r *aliveLogRepository) FindByCode(ctx context.Context, code string) ([]entity.AliveLog, error) {
	return r.find(ctx, bson.M{"code": code})
}

func (r *aliveLogRepository) find(ctx context.Context, query bson.M) ([]entity.AliveLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.logs.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find alive logs: %w", err)
	}

	var docs []aliveLogDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode alive logs: %w", err)
	}

	logs := make([]entity.AliveLog, 0, len(docs))
	for i := range docs {
		logs = append(logs, docs[i].toEntity())
	}
	return logs, nil
}
