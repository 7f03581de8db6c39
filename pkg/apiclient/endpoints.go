package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gestmed/internal/delivery/dto"
)

const dateLayout = "2006-01-02"

// AppointmentFilter selects appointments on the list endpoint. Zero fields are not sent.
type AppointmentFilter struct {
	Date              time.Time
	DoctorID          int64
	PatientID         int64
	ServiceID         string
	PatientEmail      string
	PatientFiscalCode string
	Code              string
	Status            string
}

func (f AppointmentFilter) values() url.Values {
	q := url.Values{}
	if !f.Date.IsZero() {
		q.Set("date", f.Date.Format(dateLayout))
	}
	setInt(q, "doctor_id", f.DoctorID)
	setInt(q, "patient_id", f.PatientID)
	setString(q, "service_id", f.ServiceID)
	setString(q, "patient_email", f.PatientEmail)
	setString(q, "patient_codice_fiscale", f.PatientFiscalCode)
	setString(q, "code", f.Code)
	setString(q, "status", f.Status)
	return q
}

// ServiceFilter selects services on the list endpoint.
type ServiceFilter struct {
	DoctorID   int64
	IsActive   *bool
	IsExternal *bool
	SortBy     string
	SortOrder  string
}

func (f ServiceFilter) values() url.Values {
	q := url.Values{}
	setInt(q, "doctor_id", f.DoctorID)
	setBool(q, "is_active", f.IsActive)
	setBool(q, "is_external", f.IsExternal)
	setString(q, "sortBy", f.SortBy)
	setString(q, "sortOrder", f.SortOrder)
	return q
}

// BusySlotWindow picks the busy-slot window. A range wins over Date; all zero means from now on.
type BusySlotWindow struct {
	Date      time.Time
	StartDate time.Time
	EndDate   time.Time
}

func (w BusySlotWindow) values() url.Values {
	q := url.Values{}
	if !w.StartDate.IsZero() && !w.EndDate.IsZero() {
		q.Set("start_date", formatBound(w.StartDate))
		q.Set("end_date", formatBound(w.EndDate))
		return q
	}
	if !w.Date.IsZero() {
		q.Set("date", w.Date.Format(dateLayout))
	}
	return q
}

// formatBound sends midnight UTC as a plain date, which the server reads as a whole day.
func formatBound(t time.Time) string {
	t = t.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339)
}

func setString(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setInt(q url.Values, key string, value int64) {
	if value != 0 {
		q.Set(key, strconv.FormatInt(value, 10))
	}
}

func setBool(q url.Values, key string, value *bool) {
	if value != nil {
		q.Set(key, strconv.FormatBool(*value))
	}
}

func searchQuery(search string) url.Values {
	q := url.Values{}
	setString(q, "search", search)
	return q
}

func patientPath(id int64) string { return "/patients/" + strconv.FormatInt(id, 10) }

func doctorPath(id int64) string { return "/doctors/" + strconv.FormatInt(id, 10) }

// System

func (c *Client) Health(ctx context.Context) (*dto.HealthResponse, error) {
	var out dto.HealthResponse
	// health is never cached
	body, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return nil, err
	}
	return &out, decode(body, &out)
}

func (c *Client) Me(ctx context.Context) (*dto.IdentityResponse, error) {
	var out dto.IdentityResponse
	body, err := c.do(ctx, http.MethodGet, "/me", nil, nil)
	if err != nil {
		return nil, err
	}
	return &out, decode(body, &out)
}

func (c *Client) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var out dto.DashboardResponse
	if err := c.get(ctx, "/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Patients

func (c *Client) ListPatients(ctx context.Context, search string) ([]dto.PatientResponse, error) {
	var out []dto.PatientResponse
	if err := c.get(ctx, "/patients", searchQuery(search), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPatient(ctx context.Context, id int64) (*dto.PatientResponse, error) {
	var out dto.PatientResponse
	if err := c.get(ctx, patientPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	var out dto.PatientResponse
	if err := c.write(ctx, http.MethodPost, "/patients", req, &out, "/patients"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePatient(ctx context.Context, id int64, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	var out dto.PatientResponse
	if err := c.write(ctx, http.MethodPut, patientPath(id), req, &out, "/patients"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePatient(ctx context.Context, id int64) error {
	return c.write(ctx, http.MethodDelete, patientPath(id), nil, nil, "/patients")
}

// Doctors

func (c *Client) ListDoctors(ctx context.Context, search string) ([]dto.DoctorResponse, error) {
	var out []dto.DoctorResponse
	if err := c.get(ctx, "/doctors", searchQuery(search), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDoctor(ctx context.Context, id int64) (*dto.DoctorResponse, error) {
	var out dto.DoctorResponse
	if err := c.get(ctx, doctorPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	var out dto.DoctorResponse
	if err := c.write(ctx, http.MethodPost, "/doctors", req, &out, "/doctors"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDoctor(ctx context.Context, id int64, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	var out dto.DoctorResponse
	if err := c.write(ctx, http.MethodPut, doctorPath(id), req, &out, "/doctors"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDoctor(ctx context.Context, id int64) error {
	return c.write(ctx, http.MethodDelete, doctorPath(id), nil, nil, "/doctors")
}

// Services

func (c *Client) ListServices(ctx context.Context, filter ServiceFilter) ([]dto.ServiceResponse, error) {
	var out []dto.ServiceResponse
	if err := c.get(ctx, "/appointments/services", filter.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDoctorServices(ctx context.Context, doctorID int64, isActive *bool) ([]dto.ServiceResponse, error) {
	q := url.Values{}
	setBool(q, "is_active", isActive)

	var out []dto.ServiceResponse
	path := "/appointments/services/doctor/" + strconv.FormatInt(doctorID, 10)
	if err := c.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetService(ctx context.Context, id string) (*dto.ServiceResponse, error) {
	var out dto.ServiceResponse
	if err := c.get(ctx, "/appointments/services/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateService(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	var out dto.ServiceResponse
	if err := c.write(ctx, http.MethodPost, "/appointments/services", req, &out, "/appointments/services"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateService(ctx context.Context, id string, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	var out dto.ServiceResponse
	if err := c.write(ctx, http.MethodPut, "/appointments/services/"+url.PathEscape(id), req, &out, "/appointments/services"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteService(ctx context.Context, id string) error {
	return c.write(ctx, http.MethodDelete, "/appointments/services/"+url.PathEscape(id), nil, nil, "/appointments/services")
}

// Appointments

func (c *Client) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]dto.AppointmentResponse, error) {
	var out []dto.AppointmentResponse
	if err := c.get(ctx, "/appointments", filter.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAppointment(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	var out dto.AppointmentResponse
	if err := c.get(ctx, "/appointments/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	var out dto.AppointmentResponse
	if err := c.write(ctx, http.MethodPost, "/appointments", req, &out, "/appointments", "/dashboard", "/alive"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, id string, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	var out dto.AppointmentResponse
	if err := c.write(ctx, http.MethodPut, "/appointments/"+url.PathEscape(id), req, &out, "/appointments", "/dashboard", "/alive"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAppointmentStatus(ctx context.Context, id, status string) (*dto.AppointmentResponse, error) {
	var out dto.AppointmentResponse
	req := dto.UpdateAppointmentStatusRequest{Status: status}
	if err := c.write(ctx, http.MethodPut, "/appointments/"+url.PathEscape(id)+"/status", req, &out, "/appointments", "/dashboard", "/alive"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	return c.write(ctx, http.MethodDelete, "/appointments/"+url.PathEscape(id), nil, nil, "/appointments", "/dashboard", "/alive")
}

func (c *Client) BusySlots(ctx context.Context, doctorID int64, window BusySlotWindow) ([]dto.BusySlotResponse, error) {
	var out []dto.BusySlotResponse
	path := "/appointments/doctor/" + strconv.FormatInt(doctorID, 10) + "/busy-slots"
	if err := c.get(ctx, path, window.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Alive logs

func (c *Client) ActiveAppointments(ctx context.Context) ([]dto.ActiveAppointmentResponse, error) {
	var out []dto.ActiveAppointmentResponse
	if err := c.get(ctx, "/alive", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AppointmentLogs(ctx context.Context, appointmentID string) ([]dto.AliveLogResponse, error) {
	var out []dto.AliveLogResponse
	if err := c.get(ctx, "/alive/"+url.PathEscape(appointmentID)+"/logs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) LogsByCode(ctx context.Context, code string) ([]dto.AliveLogResponse, error) {
	var out []dto.AliveLogResponse
	if err := c.get(ctx, "/alive/code/"+url.PathEscape(code)+"/logs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddAppointmentLog(ctx context.Context, appointmentID string, req *dto.CreateAliveLogRequest) (*dto.AliveLogResponse, error) {
	var out dto.AliveLogResponse
	if err := c.write(ctx, http.MethodPost, "/alive/"+url.PathEscape(appointmentID)+"/logs", req, &out, "/alive"); err != nil {
		return nil, err
	}
	return &out, nil
}
