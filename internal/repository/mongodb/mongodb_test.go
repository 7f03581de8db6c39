package mongodb

import (
	"context"
	"testing"
	"time"

	"gestmed/internal/domain/entity"
	domainRepo "gestmed/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestServiceRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns object id", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		service := &entity.Service{Name: "Visita", DoctorID: 2, DurationMinutes: 30, Price: decimal.NewFromInt(50), IsActive: true}
		require.NoError(mt, repo.Create(context.Background(), service))

		_, err := primitive.ObjectIDFromHex(service.ID)
		assert.NoError(mt, err)
		assert.False(mt, service.CreatedAt.IsZero())
		assert.True(mt, service.Price.Equal(decimal.NewFromInt(50)))
	})

	mt.Run("find by malformed id is a miss", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)

		service, err := repo.FindByID(context.Background(), "42")
		require.NoError(mt, err)
		assert.Nil(mt, service)
	})

	mt.Run("delete rejects referenced service", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "gestmed.appointments", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(1)}}))

		err := repo.DeleteUnused(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domainRepo.ErrServiceInUse)
	})

	mt.Run("delete missing service", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "gestmed.appointments", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}),
		)

		err := repo.DeleteUnused(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domainRepo.ErrNotFound)
	})

	mt.Run("delete unused service", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "gestmed.appointments", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}),
		)

		assert.NoError(mt, repo.DeleteUnused(context.Background(), primitive.NewObjectID().Hex()))
	})
}

func TestAppointmentRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate code", func(mt *mtest.T) {
		repo := NewAppointmentRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: appointments index: uniq_appointment_code",
		}))

		err := repo.Create(context.Background(), &entity.Appointment{
			Code:            "ABCD1234",
			DoctorID:        1,
			ServiceID:       primitive.NewObjectID().Hex(),
			AppointmentDate: time.Now(),
			Status:          entity.AppointmentStatusScheduled,
		})
		assert.ErrorIs(mt, err, domainRepo.ErrDuplicateCode)
	})

	mt.Run("find all decodes joined service", func(mt *mtest.T) {
		repo := NewAppointmentRepository(mt.DB)

		id := primitive.NewObjectID()
		serviceID := primitive.NewObjectID()
		at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "gestmed.appointments", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: id},
				{Key: "code", Value: "ABCD1234"},
				{Key: "doctor_id", Value: int64(4)},
				{Key: "service_id", Value: serviceID},
				{Key: "appointment_date", Value: at},
				{Key: "status", Value: "scheduled"},
				{Key: "service", Value: bson.D{
					{Key: "_id", Value: serviceID},
					{Key: "name", Value: "Visita"},
					{Key: "duration_minutes", Value: int32(45)},
					{Key: "price", Value: 80.5},
				}},
			},
		))

		doctorID := int64(4)
		appointments, err := repo.FindAll(context.Background(), &entity.AppointmentFilter{
			DoctorID: &doctorID,
			Statuses: entity.BusyStatuses,
		})
		require.NoError(mt, err)
		require.Len(mt, appointments, 1)

		got := appointments[0]
		assert.Equal(mt, id.Hex(), got.ID)
		assert.Equal(mt, serviceID.Hex(), got.ServiceID)
		assert.Equal(mt, "Visita", got.ServiceName)
		assert.Equal(mt, 45, got.DurationMinutes)
		assert.True(mt, got.Price.Equal(decimal.RequireFromString("80.5")))
		assert.True(mt, at.Equal(got.AppointmentDate))
	})

	mt.Run("find all with malformed service id", func(mt *mtest.T) {
		repo := NewAppointmentRepository(mt.DB)

		appointments, err := repo.FindAll(context.Background(), &entity.AppointmentFilter{ServiceID: "12"})
		require.NoError(mt, err)
		assert.Empty(mt, appointments)
	})

	mt.Run("update status reports matched count", func(mt *mtest.T) {
		repo := NewAppointmentRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(1)},
		))

		affected, err := repo.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), entity.AppointmentStatusCompleted)
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), affected)
	})

	mt.Run("count by status", func(mt *mtest.T) {
		repo := NewAppointmentRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "gestmed.appointments", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "scheduled"}, {Key: "total", Value: int32(3)}},
			bson.D{{Key: "_id", Value: "cancelled"}, {Key: "total", Value: int32(1)}},
		))

		counts, err := repo.CountByStatus(context.Background(), time.Now())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), counts[entity.AppointmentStatusScheduled])
		assert.Equal(mt, int64(1), counts[entity.AppointmentStatusCancelled])
	})
}

func TestAliveLogRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create stamps server time", func(mt *mtest.T) {
		repo := NewAliveLogRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		log := &entity.AliveLog{AppointmentID: "abc", Title: "Arrived", Description: "Patient checked in"}
		require.NoError(mt, repo.Create(context.Background(), log))
		assert.NotEmpty(mt, log.ID)
		assert.WithinDuration(mt, time.Now(), log.CreatedAt, time.Minute)
	})

	mt.Run("find by code", func(mt *mtest.T) {
		repo := NewAliveLogRepository(mt.DB)
		now := time.Now().UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "gestmed.alive_logs", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "appointment_id", Value: "abc"}, {Key: "code", Value: "ABCD1234"}, {Key: "title", Value: "Second"}, {Key: "created_at", Value: now}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "appointment_id", Value: "abc"}, {Key: "code", Value: "ABCD1234"}, {Key: "title", Value: "First"}, {Key: "created_at", Value: now.Add(-time.Minute)}},
		))

		logs, err := repo.FindByCode(context.Background(), "ABCD1234")
		require.NoError(mt, err)
		require.Len(mt, logs, 2)
		assert.Equal(mt, "Second", logs[0].Title)
	})
}
