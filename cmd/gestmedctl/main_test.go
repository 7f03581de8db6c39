package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"gestmed/cmd/bootstrap"
	"gestmed/config"
	"gestmed/internal/client/preload"
	"gestmed/internal/client/store"
	"gestmed/internal/delivery/dto"
	"gestmed/internal/repository/memory"
	"gestmed/internal/service"
	"gestmed/pkg/apiclient"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand(t *testing.T) (*command, *bytes.Buffer) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		App:     config.AppConfig{Service: config.ServiceAll, RequestTimeout: 5 * time.Second},
		Storage: config.StorageConfig{Backend: config.BackendMemory},
		Proxy:   config.ProxyConfig{TokenHeader: "X-Forwarded-Access-Token"},
	}
	guard := service.NewBookingGuard(nil, config.BookingConfig{}, log)
	t.Cleanup(guard.Stop)

	server := httptest.NewServer(bootstrap.NewHandler(cfg, log, bootstrap.NewMemoryRepositories(memory.NewStore()), guard, nil))
	t.Cleanup(server.Close)

	client := apiclient.New(server.URL, apiclient.WithLogger(log))
	stores := store.New(client, log, nil)
	out := &bytes.Buffer{}

	return &command{
		v:         viper.New(),
		log:       log,
		client:    client,
		stores:    stores,
		preloader: preload.New(stores, client, log),
		out:       out,
	}, out
}

func decodeOut[T any](t *testing.T, out *bytes.Buffer) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(out.Bytes(), &v), out.String())
	out.Reset()
	return v
}

func TestBookingFlowThroughCLI(t *testing.T) {
	cmd, out := newCommand(t)
	ctx := context.Background()

	doctor, err := cmd.client.CreateDoctor(ctx, &dto.CreateDoctorRequest{Name: "Dr. Verdi", Specialization: "Cardiology"})
	require.NoError(t, err)
	duration := 45
	svc, err := cmd.client.CreateService(ctx, &dto.CreateServiceRequest{Name: "ECG", DoctorID: &doctor.ID, DurationMinutes: &duration})
	require.NoError(t, err)

	cmd.v.Set("doctor", doctor.ID)
	cmd.v.Set("service", svc.ID)
	cmd.v.Set("patient-name", "Mario Rossi")
	cmd.v.Set("at", "2030-05-02T09:00:00Z")
	require.NoError(t, cmd.run(ctx, "book", nil))
	appt := decodeOut[dto.AppointmentResponse](t, out)
	assert.Len(t, appt.Code, 8)
	assert.Equal(t, "scheduled", appt.Status)
	assert.Equal(t, "ECG", appt.ServiceName)

	cmd.v.Set("date", "2030-05-02")
	require.NoError(t, cmd.run(ctx, "slots", []string{strconv.FormatInt(doctor.ID, 10)}))
	slots := decodeOut[[]dto.BusySlotResponse](t, out)
	require.Len(t, slots, 1)
	assert.Equal(t, 45*time.Minute, slots[0].EndTime.Sub(slots[0].StartTime))

	require.NoError(t, cmd.run(ctx, "status", []string{appt.ID, "completed"}))
	updated := decodeOut[dto.AppointmentResponse](t, out)
	assert.Equal(t, "completed", updated.Status)

	require.NoError(t, cmd.run(ctx, "logs", []string{appt.ID}))
	logs := decodeOut[[]dto.AliveLogResponse](t, out)
	require.Len(t, logs, 1)
	assert.Equal(t, "Status changed", logs[0].Title)

	cmd.v.Set("local", true)
	require.NoError(t, cmd.run(ctx, "dashboard", nil))
	local := decodeOut[store.Dashboard](t, out)
	assert.Equal(t, 1, local.TotalDoctors)
	assert.Equal(t, 1, local.Statistics.CompletedAppointments)
	assert.Equal(t, "Mario Rossi", local.RecentAppointments[0].PatientName)
	assert.Equal(t, "Dr. Verdi", local.RecentAppointments[0].DoctorName)
}

func TestCommandErrors(t *testing.T) {
	cmd, _ := newCommand(t)
	ctx := context.Background()

	assert.ErrorIs(t, cmd.run(ctx, "status", []string{"1"}), errUsage)
	assert.Error(t, cmd.run(ctx, "reboot", nil))

	cmd.v.Set("at", "tomorrow")
	assert.Error(t, cmd.run(ctx, "book", nil))

	err := cmd.run(ctx, "status", []string{"404", "completed"})
	assert.True(t, apiclient.IsStatus(err, 404))

	err = cmd.run(ctx, "status", []string{"404", "pending"})
	assert.True(t, apiclient.IsStatus(err, 400))
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2030-05-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 5, 2, 0, 0, 0, 0, time.UTC), day)

	zero, err := parseDay(" ")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = parseDay("02/05/2030")
	assert.Error(t, err)
}
