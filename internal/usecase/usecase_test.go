package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"gestmed/config"
	"gestmed/internal/delivery/dto"
	"gestmed/internal/domain/entity"
	"gestmed/internal/repository/memory"
	"gestmed/internal/service"
	"gestmed/pkg/apptcode"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inlineLocker struct {
	calls []int64
}

func (l *inlineLocker) WithDoctorLock(ctx context.Context, doctorID int64, fn func(ctx context.Context) error) error {
	l.calls = append(l.calls, doctorID)
	return fn(ctx)
}

type fixture struct {
	store        *memory.Store
	locker       *inlineLocker
	patients     PatientUsecase
	doctors      DoctorUsecase
	services     ServiceUsecase
	appointments *appointmentUsecase
	aliveLogs    AliveLogUsecase
	dashboard    *dashboardUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.NewStore()
	patientRepo := memory.NewPatientRepository(store)
	doctorRepo := memory.NewDoctorRepository(store)
	serviceRepo := memory.NewServiceRepository(store)
	appointmentRepo := memory.NewAppointmentRepository(store)
	aliveLogRepo := memory.NewAliveLogRepository(store)
	locker := &inlineLocker{}

	return &fixture{
		store:        store,
		locker:       locker,
		patients:     NewPatientUsecase(log, patientRepo),
		doctors:      NewDoctorUsecase(log, doctorRepo),
		services:     NewServiceUsecase(log, serviceRepo, appointmentRepo, locker),
		appointments: NewAppointmentUsecase(log, appointmentRepo, serviceRepo, locker, service.NewAppointmentTrail(log, aliveLogRepo)).(*appointmentUsecase),
		aliveLogs:    NewAliveLogUsecase(log, aliveLogRepo, appointmentRepo, patientRepo, doctorRepo),
		dashboard:    NewDashboardUsecase(log, patientRepo, doctorRepo, appointmentRepo).(*dashboardUsecase),
	}
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func (f *fixture) createService(t *testing.T, name string, doctorID int64, active bool) *dto.ServiceResponse {
	t.Helper()
	price := decimal.RequireFromString("80.00")
	svc, err := f.services.Create(context.Background(), &dto.CreateServiceRequest{
		Name:            name,
		DoctorID:        int64Ptr(doctorID),
		Price:           &price,
		IsActive:        boolPtr(active),
		DurationMinutes: func() *int { v := 45; return &v }(),
	})
	require.NoError(t, err)
	return svc
}

func bookingRequest(doctorID int64, serviceID string, at time.Time) *dto.CreateAppointmentRequest {
	return &dto.CreateAppointmentRequest{
		PatientFullName:   "Mario Rossi",
		PatientEmail:      "mario@example.com",
		PatientFiscalCode: "rssmra80a01h501u",
		DoctorID:          doctorID,
		ServiceID:         dto.ID(serviceID),
		AppointmentDate:   &at,
	}
}

func TestCreateAppointmentJoinsServiceAndDefaultsStatus(t *testing.T) {
	f := newFixture(t)
	svc := f.createService(t, "Visita cardiologica", 1, true)
	at := time.Date(2030, 3, 10, 9, 0, 0, 0, time.UTC)

	resp, err := f.appointments.Create(context.Background(), bookingRequest(1, svc.ID, at))
	require.NoError(t, err)

	assert.True(t, apptcode.Valid(resp.Code))
	assert.Equal(t, string(entity.AppointmentStatusScheduled), resp.Status)
	assert.Equal(t, "Visita cardiologica", resp.ServiceName)
	assert.Equal(t, 45, resp.DurationMinutes)
	assert.Equal(t, 80.0, resp.Price)
	assert.Equal(t, "RSSMRA80A01H501U", resp.PatientFiscalCode)
	assert.Equal(t, []int64{1}, f.locker.calls)
}

func TestCreateAppointmentRejectsUnavailableService(t *testing.T) {
	f := newFixture(t)
	owned := f.createService(t, "Visita", 1, true)
	inactive := f.createService(t, "Ecografia", 2, false)
	at := time.Date(2030, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		doctorID  int64
		serviceID string
	}{
		{"other doctor", 2, owned.ID},
		{"inactive", 2, inactive.ID},
		{"missing", 1, "999"},
		{"malformed", 1, "not-an-id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.appointments.Create(context.Background(), bookingRequest(tt.doctorID, tt.serviceID, at))
			assert.ErrorIs(t, err, ErrServiceNotAvailable)
		})
	}

	all, err := f.appointments.GetAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateAppointmentRequiresPatient(t *testing.T) {
	f := newFixture(t)
	svc := f.createService(t, "Visita", 1, true)
	req := bookingRequest(1, svc.ID, time.Now())
	req.PatientFullName = "  "

	_, err := f.appointments.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrPatientRequired)

	req.PatientID = int64Ptr(7)
	_, err = f.appointments.Create(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateAppointmentRegeneratesCollidingCode(t *testing.T) {
	f := newFixture(t)
	svc := f.createService(t, "Visita", 1, true)
	at := time.Date(2030, 3, 10, 9, 0, 0, 0, time.UTC)

	codes := []string{"AAAA1111", "AAAA1111", "BBBB2222"}
	f.appointments.newCode = func() string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	first, err := f.appointments.Create(context.Background(), bookingRequest(1, svc.ID, at))
	require.NoError(t, err)
	second, err := f.appointments.Create(context.Background(), bookingRequest(1, svc.ID, at.Add(time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, "AAAA1111", first.Code)
	assert.Equal(t, "BBBB2222", second.Code)
}

func TestCreateAppointmentGivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	svc := f.createService(t, "Visita", 1, true)
	f.appointments.newCode = func() string { return "SAME0000" }

	_, err := f.appointments.Create(context.Background(), bookingRequest(1, svc.ID, time.Now()))
	require.NoError(t, err)

	_, err = f.appointments.Create(context.Background(), bookingRequest(1, svc.ID, time.Now()))
	assert.ErrorIs(t, err, ErrCodeGeneration)
}

func TestConcurrentBookingsGetUniqueCodes(t *testing.T) {
	f := newFixture(t)
	svc := f.createService(t, "Visita", 1, true)

	log := logrus.New()
	log.SetOutput(io.Discard)
	guard := service.NewBookingGuard(nil, config.BookingConfig{LockWait: 5 * time.Second}, log)
	defer guard.Stop()
	f.appointments.locker = guard

	const n = 20
	var wg sync.WaitGroup
	codes := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			at := time.Date(2030, 3, 10, 8, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)
			resp, err := f.appointments.Create(context.Background(), bookingRequest(1, svc.ID, at))
			if assert.NoError(t, err) {
				codes <- resp.Code
			}
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.Len(t, seen, n)
}

func TestUpdateAppointmentRevalidatesEffectivePair(t *testing.T) {
	f := newFixture(t)
	svc := f.createService(t, "Visita", 1, true)
	other := f.createService(t, "Ecografia", 2, true)
	created, err := f.appointments.Create(context.Background(), bookingRequest(1, svc.ID, time.Now()))
	require.NoError(t, err)

	// Doctor 2 does not own the stored service.
	_, err = f.appointments.Update(context.Background(), created.ID, &dto.UpdateAppointmentRequest{DoctorID: int64Ptr(2)})
	assert.ErrorIs(t, err, ErrServiceNotAvailable)

	stored, err := f.appointments.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.DoctorID)

	otherID := dto.ID(other.ID)
	updated, err := f.appointments.Update(context.Background(), created.ID, &dto.UpdateAppointmentRequest{
		DoctorID:  int64Ptr(2),
		ServiceID: &otherID,
		Notes:     strPtr("moved"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.DoctorID)
	assert.Equal(t, "Ecografia", updated.ServiceName)
	assert.Equal(t, "moved", updated.Notes)
	assert.Equal(t, created.Code, updated.Code)
}

func TestUpdateAppointmentMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.appointments.Update(context.Background(), "42", &dto.UpdateAppointmentRequest{Notes: strPtr("x")})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.createService(t, "Visita", 1, true)
	created, err := f.appointments.Create(ctx, bookingRequest(1, svc.ID, time.Now()))
	require.NoError(t, err)

	_, err = f.appointments.UpdateStatus(ctx, created.ID, &dto.UpdateAppointmentStatusRequest{})
	assert.ErrorIs(t, err, ErrStatusRequired)

	_, err = f.appointments.UpdateStatus(ctx, created.ID, &dto.UpdateAppointmentStatusRequest{Status: "done"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.appointments.UpdateStatus(ctx, created.ID, &dto.UpdateAppointmentStatusRequest{Status: "pending"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	stored, err := f.appointments.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "scheduled", stored.Status)

	updated, err := f.appointments.UpdateStatus(ctx, created.ID, &dto.UpdateAppointmentStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)

	logs, err := f.aliveLogs.GetByAppointment(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AliveLogTitleStatusChanged, logs[0].Title)
	assert.Equal(t, "Status changed from scheduled to completed", logs[0].Description)
	assert.Equal(t, created.Code, logs[0].Code)

	_, err = f.appointments.UpdateStatus(ctx, "999", &dto.UpdateAppointmentStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestDeleteAppointment(t *testing.T) {
	f := newFixture(t)
	svc := f.createService(t, "Visita", 1, true)
	created, err := f.appointments.Create(context.Background(), bookingRequest(1, svc.ID, time.Now()))
	require.NoError(t, err)

	require.NoError(t, f.appointments.Delete(context.Background(), created.ID))
	assert.ErrorIs(t, f.appointments.Delete(context.Background(), created.ID), ErrAppointmentNotFound)
	_, err = f.appointments.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestGetAllFiltersCaseInsensitively(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.createService(t, "Visita", 1, true)
	day := time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC)

	late, err := f.appointments.Create(ctx, bookingRequest(1, svc.ID, day.Add(17*time.Hour)))
	require.NoError(t, err)
	early, err := f.appointments.Create(ctx, bookingRequest(1, svc.ID, day.Add(8*time.Hour)))
	require.NoError(t, err)
	_, err = f.appointments.Create(ctx, bookingRequest(1, svc.ID, day.Add(30*time.Hour)))
	require.NoError(t, err)

	list, err := f.appointments.GetAll(ctx, &dto.AppointmentListQuery{
		Date:              &day,
		PatientEmail:      "MARIO@example.com",
		PatientFiscalCode: "rssmra80a01h501u",
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, early.ID, list[0].ID)
	assert.Equal(t, late.ID, list[1].ID)

	byCode, err := f.appointments.GetAll(ctx, &dto.AppointmentListQuery{Code: toLower(early.Code)})
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, early.ID, byCode[0].ID)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func TestGetBusySlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.createService(t, "Visita", 1, true)
	day := time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := f.appointments.Create(ctx, bookingRequest(1, svc.ID, day.Add(11*time.Hour)))
	require.NoError(t, err)
	first, err := f.appointments.Create(ctx, bookingRequest(1, svc.ID, day.Add(9*time.Hour)))
	require.NoError(t, err)
	done, err := f.appointments.Create(ctx, bookingRequest(1, svc.ID, day.Add(10*time.Hour)))
	require.NoError(t, err)
	_, err = f.appointments.UpdateStatus(ctx, done.ID, &dto.UpdateAppointmentStatusRequest{Status: "completed"})
	require.NoError(t, err)
	_, err = f.appointments.Create(ctx, bookingRequest(1, svc.ID, day.Add(24*time.Hour)))
	require.NoError(t, err)
	cancelled, err := f.appointments.Create(ctx, bookingRequest(1, svc.ID, day.Add(13*time.Hour)))
	require.NoError(t, err)
	_, err = f.appointments.UpdateStatus(ctx, cancelled.ID, &dto.UpdateAppointmentStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	slots, err := f.appointments.GetBusySlots(ctx, 1, &dto.BusySlotQuery{Date: &day})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, first.AppointmentDate, slots[0].StartTime)
	assert.Equal(t, first.AppointmentDate.Add(45*time.Minute), slots[0].EndTime)
	assert.Equal(t, day.Add(11*time.Hour), slots[1].StartTime)
	for _, slot := range slots {
		assert.NotEqual(t, cancelled.AppointmentDate, slot.StartTime)
	}

	end := day.Add(48 * time.Hour)
	ranged, err := f.appointments.GetBusySlots(ctx, 1, &dto.BusySlotQuery{StartDate: &day, EndDate: &end})
	require.NoError(t, err)
	assert.Len(t, ranged, 3)

	other, err := f.appointments.GetBusySlots(ctx, 2, &dto.BusySlotQuery{Date: &day})
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = f.appointments.GetBusySlots(ctx, 1, &dto.BusySlotQuery{StartDate: &end, EndDate: &day})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	f.appointments.now = func() time.Time { return day.Add(10 * time.Hour) }
	upcoming, err := f.appointments.GetBusySlots(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2)
}

func TestServiceCreateDefaultsAndRequiredFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Create(ctx, &dto.CreateServiceRequest{Name: "Visita"})
	assert.ErrorIs(t, err, ErrServiceFieldsRequired)
	_, err = f.services.Create(ctx, &dto.CreateServiceRequest{DoctorID: int64Ptr(1)})
	assert.ErrorIs(t, err, ErrServiceFieldsRequired)

	negative := decimal.NewFromInt(-1)
	_, err = f.services.Create(ctx, &dto.CreateServiceRequest{Name: "Visita", DoctorID: int64Ptr(1), Price: &negative})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	svc, err := f.services.Create(ctx, &dto.CreateServiceRequest{Name: "Visita", DoctorID: int64Ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, 30, svc.DurationMinutes)
	assert.Equal(t, 0.0, svc.Price)
	assert.True(t, svc.IsActive)
	assert.False(t, svc.IsExternalBookable)
	assert.Equal(t, "", svc.Description)
}

func TestServiceDeleteRejectsReferencedService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	used := f.createService(t, "Visita", 3, true)
	unused := f.createService(t, "Ecografia", 3, true)
	_, err := f.appointments.Create(ctx, bookingRequest(3, used.ID, time.Now()))
	require.NoError(t, err)

	assert.ErrorIs(t, f.services.Delete(ctx, used.ID), ErrServiceInUse)
	_, err = f.services.GetByID(ctx, used.ID)
	assert.NoError(t, err)

	require.NoError(t, f.services.Delete(ctx, unused.ID))
	_, err = f.services.GetByID(ctx, unused.ID)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	assert.ErrorIs(t, f.services.Delete(ctx, unused.ID), ErrServiceNotFound)
	assert.Contains(t, f.locker.calls, int64(3))
}

func TestServiceUpdateRejectsDoctorChangeWhileInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.createService(t, "Visita", 1, true)
	_, err := f.appointments.Create(ctx, bookingRequest(1, svc.ID, time.Now()))
	require.NoError(t, err)

	_, err = f.services.Update(ctx, svc.ID, &dto.UpdateServiceRequest{DoctorID: int64Ptr(2)})
	assert.ErrorIs(t, err, ErrServiceDoctorInUse)

	updated, err := f.services.Update(ctx, svc.ID, &dto.UpdateServiceRequest{Name: strPtr("Visita di controllo"), IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Visita di controllo", updated.Name)
	assert.False(t, updated.IsActive)

	_, err = f.services.Update(ctx, "999", &dto.UpdateServiceRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestServiceUpdateHoldsOwnerDoctorLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.createService(t, "Visita", 4, true)
	f.locker.calls = nil

	updated, err := f.services.Update(ctx, svc.ID, &dto.UpdateServiceRequest{DoctorID: int64Ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.DoctorID)
	assert.Equal(t, []int64{4}, f.locker.calls)

	_, err = f.services.Update(ctx, svc.ID, &dto.UpdateServiceRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, f.locker.calls)

	_, err = f.appointments.Create(ctx, bookingRequest(5, svc.ID, time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrServiceNotAvailable)
}

func TestServiceGetByDoctorSortsByName(t *testing.T) {
	f := newFixture(t)
	f.createService(t, "Zeta", 1, true)
	f.createService(t, "Alfa", 1, false)
	f.createService(t, "Beta", 2, true)

	all, err := f.services.GetByDoctor(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alfa", all[0].Name)
	assert.Equal(t, "Zeta", all[1].Name)

	active, err := f.services.GetByDoctor(context.Background(), 1, boolPtr(true))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Zeta", active[0].Name)
}

func TestAliveLogCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.createService(t, "Visita", 1, true)
	appt, err := f.appointments.Create(ctx, bookingRequest(1, svc.ID, time.Now()))
	require.NoError(t, err)

	_, err = f.aliveLogs.Create(ctx, appt.ID, &dto.CreateAliveLogRequest{Title: "Arrivo"})
	assert.ErrorIs(t, err, ErrAliveLogFieldsRequired)

	_, err = f.aliveLogs.Create(ctx, "999", &dto.CreateAliveLogRequest{Title: "Arrivo", Description: "In sala"})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	first, err := f.aliveLogs.Create(ctx, appt.ID, &dto.CreateAliveLogRequest{Title: "Arrivo", Description: "In sala"})
	require.NoError(t, err)
	assert.Equal(t, appt.Code, first.Code)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := f.aliveLogs.Create(ctx, appt.ID, &dto.CreateAliveLogRequest{Title: "Visita", Description: "Iniziata"})
	require.NoError(t, err)

	byCode, err := f.aliveLogs.GetByCode(ctx, toLower(appt.Code))
	require.NoError(t, err)
	require.Len(t, byCode, 2)
	assert.Equal(t, second.ID, byCode[0].ID)
	assert.Equal(t, first.ID, byCode[1].ID)
}

func TestAliveGetActiveResolvesNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doctor, err := f.doctors.Create(ctx, &dto.CreateDoctorRequest{Name: "Dr. Bianchi", Specialization: "Cardiologia"})
	require.NoError(t, err)
	patient, err := f.patients.Create(ctx, &dto.CreatePatientRequest{Name: "Lucia Verdi"})
	require.NoError(t, err)
	svc := f.createService(t, "Visita", doctor.ID, true)

	req := bookingRequest(doctor.ID, svc.ID, time.Now().Add(time.Hour))
	req.PatientID = &patient.ID
	active, err := f.appointments.Create(ctx, req)
	require.NoError(t, err)

	cancelled, err := f.appointments.Create(ctx, bookingRequest(doctor.ID, svc.ID, time.Now()))
	require.NoError(t, err)
	_, err = f.appointments.UpdateStatus(ctx, cancelled.ID, &dto.UpdateAppointmentStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	list, err := f.aliveLogs.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)
	assert.Equal(t, "Lucia Verdi", list[0].PatientName)
	assert.Equal(t, "Dr. Bianchi", list[0].DoctorName)
	assert.Equal(t, "Cardiologia", list[0].DoctorSpecialization)
}

func TestDashboardCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2030, 3, 10, 12, 0, 0, 0, time.UTC)
	f.dashboard.now = func() time.Time { return now }

	doctor, err := f.doctors.Create(ctx, &dto.CreateDoctorRequest{Name: "Dr. Bianchi"})
	require.NoError(t, err)
	_, err = f.patients.Create(ctx, &dto.CreatePatientRequest{Name: "Lucia Verdi"})
	require.NoError(t, err)
	svc := f.createService(t, "Visita", doctor.ID, true)

	for _, offset := range []time.Duration{-26 * time.Hour, -2 * time.Hour, 2 * time.Hour, 30 * time.Hour} {
		_, err := f.appointments.Create(ctx, bookingRequest(doctor.ID, svc.ID, now.Add(offset)))
		require.NoError(t, err)
	}

	d, err := f.dashboard.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), d.TotalPatients)
	assert.Equal(t, int64(1), d.TotalDoctors)
	assert.Equal(t, int64(2), d.TodayAppointments)
	assert.Equal(t, int64(0), d.PendingAppointments)
	require.Len(t, d.RecentAppointments, 2)
	assert.Equal(t, "Dr. Bianchi", d.RecentAppointments[0].DoctorName)
	assert.Equal(t, "Mario Rossi", d.RecentAppointments[0].PatientName)
	assert.Equal(t, map[string]int64{"scheduled": 3}, d.Statistics.AppointmentsByStatus)
}

func TestPatientLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := "10/02/1980"
	_, err := f.patients.Create(ctx, &dto.CreatePatientRequest{Name: "Lucia", DateOfBirth: &bad})
	assert.ErrorIs(t, err, ErrInvalidDateOfBirth)

	dob := "1980-02-10"
	created, err := f.patients.Create(ctx, &dto.CreatePatientRequest{Name: "Lucia Verdi", Email: "lucia@example.com", DateOfBirth: &dob})
	require.NoError(t, err)
	assert.Equal(t, dob, created.DateOfBirth)
	assert.Equal(t, "", created.MedicalHistory)

	updated, err := f.patients.Update(ctx, created.ID, &dto.UpdatePatientRequest{Phone: strPtr("333 1234567")})
	require.NoError(t, err)
	assert.Equal(t, "333 1234567", updated.Phone)
	assert.Equal(t, "lucia@example.com", updated.Email)

	found, err := f.patients.GetAll(ctx, "LUCIA")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, f.patients.Delete(ctx, created.ID))
	assert.ErrorIs(t, f.patients.Delete(ctx, created.ID), ErrPatientNotFound)
	_, err = f.patients.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestDoctorDefaultsAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doctor, err := f.doctors.Create(ctx, &dto.CreateDoctorRequest{Name: "Dr. Neri"})
	require.NoError(t, err)
	assert.True(t, doctor.IsAvailable)
	assert.NotNil(t, doctor.Availability)

	updated, err := f.doctors.Update(ctx, doctor.ID, &dto.UpdateDoctorRequest{IsAvailable: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)

	_, err = f.doctors.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}
