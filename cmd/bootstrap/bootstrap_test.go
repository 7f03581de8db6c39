package bootstrap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gestmed/config"
	"gestmed/internal/repository/memory"
	"gestmed/internal/service"
	"gestmed/pkg/jwt"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "proxy-secret"

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, module string) *testServer {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		App: config.AppConfig{
			Service:        module,
			RequestTimeout: 5 * time.Second,
		},
		Storage: config.StorageConfig{Backend: config.BackendMemory},
		Proxy: config.ProxyConfig{
			TokenHeader: "X-Forwarded-Access-Token",
			TokenSecret: testSecret,
		},
	}

	guard := service.NewBookingGuard(nil, config.BookingConfig{}, log)
	t.Cleanup(guard.Stop)

	return &testServer{
		t:       t,
		handler: NewHandler(cfg, log, NewMemoryRepositories(memory.NewStore()), guard, nil),
	}
}

func (s *testServer) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]interface{}](t, rec)["error"].(string)
}

func (s *testServer) mustCreate(path string, body interface{}) map[string]interface{} {
	s.t.Helper()
	rec := s.do(http.MethodPost, path, body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]interface{}](s.t, rec)
}

func TestHealthAndFallbacks(t *testing.T) {
	s := newTestServer(t, config.ServiceAll)

	rec := s.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "OK", health["status"])
	assert.NotEmpty(t, health["timestamp"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", errorOf(t, rec))

	rec = s.do(http.MethodPatch, "/patients", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = s.do(http.MethodOptions, "/appointments", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = s.do(http.MethodGet, "/health", nil, "X-Request-ID", "req-123")
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestModuleSelection(t *testing.T) {
	s := newTestServer(t, config.ServicePatients)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/patients", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/doctors", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/appointments", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", nil).Code)
}

func TestPatientEndpoints(t *testing.T) {
	s := newTestServer(t, config.ServiceAll)

	rec := s.do(http.MethodPost, "/patients", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "Validation failed", body["error"])
	assert.Contains(t, body["details"], "name")

	rec = s.do(http.MethodPost, "/patients", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", errorOf(t, rec))

	patient := s.mustCreate("/patients", map[string]interface{}{
		"name":          "Lucia Verdi",
		"email":         "lucia@example.com",
		"date_of_birth": "1980-02-10",
	})
	id := int64(patient["id"].(float64))

	rec = s.do(http.MethodGet, "/patients?search=verdi", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 1)

	rec = s.do(http.MethodPut, fmt.Sprintf("/patients/%d", id), map[string]interface{}{"phone": "333"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "333", decode[map[string]interface{}](t, rec)["phone"])

	rec = s.do(http.MethodDelete, fmt.Sprintf("/patients/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Patient deleted successfully", decode[map[string]interface{}](t, rec)["message"])

	rec = s.do(http.MethodGet, fmt.Sprintf("/patients/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Patient not found", errorOf(t, rec))

	rec = s.do(http.MethodGet, "/patients/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t, config.ServiceAll)

	doctor := s.mustCreate("/doctors", map[string]interface{}{"name": "Dr. Bianchi", "specialization": "Cardiologia"})
	doctorID := int64(doctor["id"].(float64))
	assert.Equal(t, true, doctor["is_available"])

	rec := s.do(http.MethodPost, "/appointments/services", map[string]interface{}{"name": "Visita"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name and doctor_id are required", errorOf(t, rec))

	svc := s.mustCreate("/appointments/services", map[string]interface{}{
		"name":             "Visita cardiologica",
		"doctor_id":        doctorID,
		"price":            "80.00",
		"duration_minutes": 60,
	})
	serviceID := svc["id"].(string)
	assert.Equal(t, 80.0, svc["price"])
	assert.Equal(t, true, svc["is_active"])

	rec = s.do(http.MethodGet, "/appointments/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 1)

	rec = s.do(http.MethodGet, fmt.Sprintf("/appointments/services/doctor/%d", doctorID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 1)

	rec = s.do(http.MethodPost, "/appointments", map[string]interface{}{
		"patient_full_name": "Mario Rossi",
		"doctor_id":         doctorID + 1,
		"service_id":        serviceID,
		"appointment_date":  "2030-03-10T09:00:00Z",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Service not available for this doctor", errorOf(t, rec))

	// Relational ids may arrive as JSON numbers.
	numericID := json.Number(serviceID)
	appt := s.mustCreate("/appointments", map[string]interface{}{
		"patient_full_name":      "Mario Rossi",
		"patient_codice_fiscale": "RSSMRA80A01H501U",
		"doctor_id":              doctorID,
		"service_id":             numericID,
		"appointment_date":       "2030-03-10T09:00:00Z",
	})
	apptID := appt["id"].(string)
	assert.Equal(t, "scheduled", appt["status"])
	assert.Equal(t, "Visita cardiologica", appt["service_name"])
	assert.Len(t, appt["code"], 8)

	rec = s.do(http.MethodGet, "/appointments?patient_codice_fiscale=rssmra80a01h501u&date=2030-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 1)

	rec = s.do(http.MethodGet, fmt.Sprintf("/appointments/doctor/%d/busy-slots?date=2030-03-10", doctorID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := decode[[]map[string]string](t, rec)
	require.Len(t, slots, 1)
	assert.Equal(t, "2030-03-10T09:00:00Z", slots[0]["start_time"])
	assert.Equal(t, "2030-03-10T10:00:00Z", slots[0]["end_time"])

	rec = s.do(http.MethodGet, fmt.Sprintf("/appointments/doctor/%d/busy-slots?start_date=2030-03-11&end_date=2030-03-12", doctorID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]string](t, rec))

	rec = s.do(http.MethodPut, "/appointments/"+apptID+"/status", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Status is required", errorOf(t, rec))

	rec = s.do(http.MethodPut, "/appointments/"+apptID+"/status", map[string]interface{}{"status": "archived"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status", errorOf(t, rec))

	rec = s.do(http.MethodPut, "/appointments/"+apptID+"/status", map[string]interface{}{"status": "in_progress"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "in_progress", decode[map[string]interface{}](t, rec)["status"])

	rec = s.do(http.MethodPut, "/appointments/999/status", map[string]interface{}{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Appointment not found", errorOf(t, rec))

	rec = s.do(http.MethodDelete, "/appointments/services/"+serviceID, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete: service in use", errorOf(t, rec))

	rec = s.do(http.MethodGet, "/appointments/services/"+serviceID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Alive trail: the status change above is already logged.
	rec = s.do(http.MethodPost, "/alive/"+apptID+"/logs", map[string]interface{}{"title": "Arrivo"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title and description are required", errorOf(t, rec))

	entry := s.mustCreate("/alive/"+apptID+"/logs", map[string]interface{}{"title": "Arrivo", "description": "Paziente in sala"})
	assert.Equal(t, appt["code"], entry["code"])

	rec = s.do(http.MethodGet, "/alive/code/"+appt["code"].(string)+"/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]map[string]interface{}](t, rec)
	require.Len(t, logs, 2)
	assert.Equal(t, "Arrivo", logs[0]["title"])
	assert.Equal(t, "Status changed", logs[1]["title"])

	rec = s.do(http.MethodGet, "/alive", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decode[[]map[string]interface{}](t, rec)
	require.Len(t, active, 1)
	assert.Equal(t, "Dr. Bianchi", active[0]["doctor_name"])
	assert.Equal(t, "Mario Rossi", active[0]["patient_name"])

	rec = s.do(http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dashboard := decode[map[string]interface{}](t, rec)
	assert.Equal(t, 1.0, dashboard["totalDoctors"])
	assert.Equal(t, 0.0, dashboard["totalPatients"])
	assert.Contains(t, dashboard, "recentAppointments")
	assert.Contains(t, dashboard["statistics"], "appointmentsByStatus")

	rec = s.do(http.MethodDelete, "/appointments/"+apptID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Appointment deleted successfully", decode[map[string]interface{}](t, rec)["message"])

	// The trail outlives the appointment.
	rec = s.do(http.MethodGet, "/alive/code/"+appt["code"].(string)+"/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs = decode[[]map[string]interface{}](t, rec)
	require.Len(t, logs, 2)
	assert.Equal(t, "Arrivo", logs[0]["title"])

	rec = s.do(http.MethodGet, "/alive/"+apptID+"/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 2)

	rec = s.do(http.MethodDelete, "/appointments/services/"+serviceID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Service deleted successfully", decode[map[string]interface{}](t, rec)["message"])

	rec = s.do(http.MethodDelete, "/appointments/services/"+serviceID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Service not found", errorOf(t, rec))
}

func TestMeReadsProxyIdentity(t *testing.T) {
	s := newTestServer(t, config.ServiceAll)

	rec := s.do(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwt.Sign(testSecret, jwt.Claims{Email: "segreteria@gestmed.it", Groups: []string{"staff"}}, time.Minute)
	require.NoError(t, err)

	rec = s.do(http.MethodGet, "/me", nil, "X-Forwarded-Access-Token", token)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "segreteria@gestmed.it", me["email"])
	assert.Equal(t, true, me["verified"])

	forged, err := jwt.Sign("other-secret", jwt.Claims{Email: "x@example.com"}, time.Minute)
	require.NoError(t, err)
	rec = s.do(http.MethodGet, "/patients", nil, "Authorization", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, config.ServiceAll)
	s.do(http.MethodGet, "/patients", nil)

	rec := s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/patients"`)
}
