package http

import (
	"net/http"
	"time"

	"gestmed/config"
	"gestmed/internal/delivery/http/handler"
	"gestmed/internal/delivery/http/middleware"
	"gestmed/internal/observability/metrics"
	"gestmed/pkg/response"

	"github.com/gorilla/mux"
)

// Handlers groups the route modules. A nil handler leaves its module unmounted.
type Handlers struct {
	Patient     *handler.PatientHandler
	Doctor      *handler.DoctorHandler
	Service     *handler.ServiceHandler
	Appointment *handler.AppointmentHandler
	Alive       *handler.AliveHandler
	Dashboard   *handler.DashboardHandler
	System      *handler.SystemHandler
}

type Router struct {
	router             *mux.Router
	module             string
	requestTimeout     time.Duration
	handlers           Handlers
	requestMiddleware  *middleware.RequestMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	identityMiddleware *middleware.IdentityMiddleware
	httpMetrics        *metrics.HTTPMetrics
}

func NewRouter(
	cfg config.AppConfig,
	handlers Handlers,
	requestMiddleware *middleware.RequestMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	identityMiddleware *middleware.IdentityMiddleware,
	httpMetrics *metrics.HTTPMetrics,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		module:             cfg.Service,
		requestTimeout:     cfg.RequestTimeout,
		handlers:           handlers,
		requestMiddleware:  requestMiddleware,
		corsMiddleware:     corsMiddleware,
		identityMiddleware: identityMiddleware,
		httpMetrics:        httpMetrics,
	}
}

func (r *Router) serves(module string) bool {
	return r.module == config.ServiceAll || r.module == module
}

// Setup mounts the configured modules and returns the full middleware chain.
func (r *Router) Setup() http.Handler {
	r.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	if r.httpMetrics != nil {
		r.router.Use(r.httpMetrics.Middleware)
		r.router.Handle("/metrics", r.httpMetrics.Handler()).Methods(http.MethodGet)
	}

	h := r.handlers
	if h.System != nil {
		r.router.HandleFunc("/health", h.System.Health).Methods(http.MethodGet)
		r.router.HandleFunc("/me", h.System.Me).Methods(http.MethodGet)
	}

	if r.serves(config.ServicePatients) && h.Patient != nil {
		patients := r.router.PathPrefix("/patients").Subrouter()
		patients.HandleFunc("", h.Patient.GetAllPatients).Methods(http.MethodGet)
		patients.HandleFunc("", h.Patient.CreatePatient).Methods(http.MethodPost)
		patients.HandleFunc("/{id}", h.Patient.GetPatient).Methods(http.MethodGet)
		patients.HandleFunc("/{id}", h.Patient.UpdatePatient).Methods(http.MethodPut)
		patients.HandleFunc("/{id}", h.Patient.DeletePatient).Methods(http.MethodDelete)
	}

	if r.serves(config.ServiceDoctors) && h.Doctor != nil {
		doctors := r.router.PathPrefix("/doctors").Subrouter()
		doctors.HandleFunc("", h.Doctor.GetAllDoctors).Methods(http.MethodGet)
		doctors.HandleFunc("", h.Doctor.CreateDoctor).Methods(http.MethodPost)
		doctors.HandleFunc("/{id}", h.Doctor.GetDoctor).Methods(http.MethodGet)
		doctors.HandleFunc("/{id}", h.Doctor.UpdateDoctor).Methods(http.MethodPut)
		doctors.HandleFunc("/{id}", h.Doctor.DeleteDoctor).Methods(http.MethodDelete)
	}

	if r.serves(config.ServiceAppointments) && h.Appointment != nil && h.Service != nil {
		appointments := r.router.PathPrefix("/appointments").Subrouter()

		// Service routes first, otherwise /{id} swallows "services".
		appointments.HandleFunc("/services", h.Service.GetAllServices).Methods(http.MethodGet)
		appointments.HandleFunc("/services", h.Service.CreateService).Methods(http.MethodPost)
		appointments.HandleFunc("/services/doctor/{doctor_id}", h.Service.GetServicesByDoctor).Methods(http.MethodGet)
		appointments.HandleFunc("/services/{id}", h.Service.GetService).Methods(http.MethodGet)
		appointments.HandleFunc("/services/{id}", h.Service.UpdateService).Methods(http.MethodPut)
		appointments.HandleFunc("/services/{id}", h.Service.DeleteService).Methods(http.MethodDelete)

		appointments.HandleFunc("/doctor/{doctor_id}/busy-slots", h.Appointment.GetBusySlots).Methods(http.MethodGet)

		appointments.HandleFunc("", h.Appointment.GetAllAppointments).Methods(http.MethodGet)
		appointments.HandleFunc("", h.Appointment.CreateAppointment).Methods(http.MethodPost)
		appointments.HandleFunc("/{id}/status", h.Appointment.UpdateAppointmentStatus).Methods(http.MethodPut)
		appointments.HandleFunc("/{id}", h.Appointment.GetAppointment).Methods(http.MethodGet)
		appointments.HandleFunc("/{id}", h.Appointment.UpdateAppointment).Methods(http.MethodPut)
		appointments.HandleFunc("/{id}", h.Appointment.DeleteAppointment).Methods(http.MethodDelete)
	}

	if r.serves(config.ServiceAlive) && h.Alive != nil {
		alive := r.router.PathPrefix("/alive").Subrouter()
		alive.HandleFunc("", h.Alive.GetActiveAppointments).Methods(http.MethodGet)
		alive.HandleFunc("/code/{code}/logs", h.Alive.GetLogsByCode).Methods(http.MethodGet)
		alive.HandleFunc("/{id}/logs", h.Alive.GetLogs).Methods(http.MethodGet)
		alive.HandleFunc("/{id}/logs", h.Alive.CreateLog).Methods(http.MethodPost)
	}

	if r.serves(config.ServiceDashboard) && h.Dashboard != nil {
		r.router.HandleFunc("/dashboard", h.Dashboard.GetDashboard).Methods(http.MethodGet)
	}

	// Outside mux so 404, 405 and preflight responses get them too.
	var chain http.Handler = r.router
	if r.identityMiddleware != nil {
		chain = r.identityMiddleware.Handle(chain)
	}
	chain = r.requestMiddleware.Timeout(r.requestTimeout)(chain)
	chain = r.corsMiddleware.Handle(chain)
	chain = r.requestMiddleware.Recover(chain)
	chain = r.requestMiddleware.Logger(chain)
	chain = r.requestMiddleware.RequestID(chain)

	return chain
}
