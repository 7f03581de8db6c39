package memory

import (
	"context"
	"testing"
	"time"

	"gestmed/internal/domain/entity"
	domainRepo "gestmed/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceDeleteUnusedChecksReferences(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	services := NewServiceRepository(store)
	appointments := NewAppointmentRepository(store)

	svc := &entity.Service{Name: "Visita", DoctorID: 1, DurationMinutes: 30, IsActive: true}
	require.NoError(t, services.Create(ctx, svc))
	require.NoError(t, appointments.Create(ctx, &entity.Appointment{
		Code: "AAAA1111", DoctorID: 1, ServiceID: svc.ID,
		AppointmentDate: time.Now(), Status: entity.AppointmentStatusScheduled,
	}))

	assert.ErrorIs(t, services.DeleteUnused(ctx, svc.ID), domainRepo.ErrServiceInUse)
	assert.ErrorIs(t, services.DeleteUnused(ctx, "missing"), domainRepo.ErrNotFound)

	found, err := services.FindByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestServiceFindAllSortsWithNameTieBreak(t *testing.T) {
	ctx := context.Background()
	repo := NewServiceRepository(NewStore())

	for _, s := range []entity.Service{
		{Name: "Zeta", DoctorID: 1, Price: decimal.NewFromInt(10)},
		{Name: "Alfa", DoctorID: 1, Price: decimal.NewFromInt(30)},
		{Name: "Beta", DoctorID: 2, Price: decimal.NewFromInt(20)},
	} {
		s := s
		require.NoError(t, repo.Create(ctx, &s))
	}

	byDoctor, err := repo.FindAll(ctx, &entity.ServiceFilter{SortBy: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alfa", "Zeta", "Beta"}, names(byDoctor))

	byPrice, err := repo.FindAll(ctx, &entity.ServiceFilter{SortBy: entity.ServiceSortPrice, SortDesc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alfa", "Beta", "Zeta"}, names(byPrice))
}

func TestAppointmentCreateRejectsDuplicateCode(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository(NewStore())

	first := &entity.Appointment{Code: "ABCD1234", DoctorID: 1, ServiceID: "1", Status: entity.AppointmentStatusScheduled}
	require.NoError(t, repo.Create(ctx, first))

	second := &entity.Appointment{Code: "ABCD1234", DoctorID: 1, ServiceID: "1", Status: entity.AppointmentStatusScheduled}
	assert.ErrorIs(t, repo.Create(ctx, second), domainRepo.ErrDuplicateCode)
}

func TestAppointmentFindAllJoinsAndFilters(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	services := NewServiceRepository(store)
	repo := NewAppointmentRepository(store)

	svc := &entity.Service{Name: "Ecografia", DoctorID: 3, DurationMinutes: 45, IsActive: true}
	require.NoError(t, services.Create(ctx, svc))

	base := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
	for i, status := range []entity.AppointmentStatus{
		entity.AppointmentStatusCompleted,
		entity.AppointmentStatusScheduled,
		entity.AppointmentStatusInProgress,
		entity.AppointmentStatusCancelled,
	} {
		require.NoError(t, repo.Create(ctx, &entity.Appointment{
			Code:            []string{"AAAA0001", "AAAA0002", "AAAA0003", "AAAA0004"}[i],
			DoctorID:        3,
			ServiceID:       svc.ID,
			PatientEmail:    "Mario@Example.com",
			AppointmentDate: base.Add(time.Duration(2-i) * time.Hour),
			Status:          status,
		}))
	}

	doctorID := int64(3)
	busy, err := repo.FindAll(ctx, &entity.AppointmentFilter{
		DoctorID:     &doctorID,
		PatientEmail: "mario@example.com",
		Statuses:     entity.BusyStatuses,
	})
	require.NoError(t, err)
	require.Len(t, busy, 2)
	assert.Equal(t, "AAAA0003", busy[0].Code)
	assert.Equal(t, "Ecografia", busy[0].ServiceName)
	assert.Equal(t, 45, busy[0].DurationMinutes)

	counts, err := repo.CountByStatus(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[entity.AppointmentStatusCompleted])
}

func TestAliveLogsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	clock := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { clock = clock.Add(time.Second); return clock }
	repo := NewAliveLogRepository(store)

	require.NoError(t, repo.Create(ctx, &entity.AliveLog{AppointmentID: "7", Code: "ABCD1234", Title: "First"}))
	require.NoError(t, repo.Create(ctx, &entity.AliveLog{AppointmentID: "7", Code: "ABCD1234", Title: "Second"}))
	require.NoError(t, repo.Create(ctx, &entity.AliveLog{AppointmentID: "8", Title: "Other"}))

	logs, err := repo.FindByAppointmentID(ctx, "7")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Second", logs[0].Title)

	byCode, err := repo.FindByCode(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.Len(t, byCode, 2)
}

func TestAppointmentDeleteKeepsAliveLogs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	appointments := NewAppointmentRepository(store)
	logs := NewAliveLogRepository(store)

	appt := &entity.Appointment{Code: "WXYZ9876", DoctorID: 1, ServiceID: "1", Status: entity.AppointmentStatusScheduled}
	require.NoError(t, appointments.Create(ctx, appt))
	require.NoError(t, logs.Create(ctx, &entity.AliveLog{AppointmentID: appt.ID, Code: appt.Code, Title: "Arrivo"}))

	deleted, err := appointments.Delete(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	byCode, err := logs.FindByCode(ctx, "WXYZ9876")
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, "Arrivo", byCode[0].Title)
}

func names(services []entity.Service) []string {
	out := make([]string, 0, len(services))
	for _, s := range services {
		out = append(out, s.Name)
	}
	return out
}
