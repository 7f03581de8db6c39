package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gestmed/config"
	deliveryHttp "gestmed/internal/delivery/http"
	"gestmed/internal/delivery/http/handler"
	"gestmed/internal/delivery/http/middleware"
	domainRepo "gestmed/internal/domain/repository"
	"gestmed/internal/infrastructure/cache"
	"gestmed/internal/infrastructure/database"
	"gestmed/internal/observability/metrics"
	"gestmed/internal/repository"
	"gestmed/internal/repository/memory"
	"gestmed/internal/repository/mongodb"
	"gestmed/internal/service"
	"gestmed/internal/usecase"
	"gestmed/pkg/jwt"
	"gestmed/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config       *config.Config
	Log          *logrus.Logger
	DB           *gorm.DB
	Mongo        *database.MongoConnection
	RedisClient  *redis.Client
	BookingGuard *service.BookingGuard
	Server       *http.Server
}

// Repositories is the storage selected by STORAGE_BACKEND.
type Repositories struct {
	Patients     domainRepo.PatientRepository
	Doctors      domainRepo.DoctorRepository
	Services     domainRepo.ServiceRepository
	Appointments domainRepo.AppointmentRepository
	AliveLogs    domainRepo.AliveLogRepository
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.Log = setupLogger(cfg.App.LogLevel)
	app.Log.Infof("Configuration loaded, serving %q with %s storage", cfg.App.Service, cfg.Storage.Backend)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repos, err := app.initializeStorage(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	// Initialize Redis
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, app.Log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
	}

	app.BookingGuard = service.NewBookingGuard(app.RedisClient, cfg.Booking, app.Log)

	// Initialize all layers
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           NewHandler(cfg, app.Log, repos, app.BookingGuard, prometheus.NewRegistry()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// initializeStorage opens the connections the backend needs and builds the repositories.
func (app *App) initializeStorage(ctx context.Context) (*Repositories, error) {
	cfg := app.Config

	if cfg.Storage.Backend == config.BackendMemory {
		app.Log.Warn("Using in-memory storage, data is lost on restart")
		return NewMemoryRepositories(memory.NewStore()), nil
	}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env == "development")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.Log.Info("Database connected successfully")

	repos := &Repositories{
		Patients:     repository.NewPatientRepository(db),
		Doctors:      repository.NewDoctorRepository(db),
		Services:     repository.NewServiceRepository(db),
		Appointments: repository.NewAppointmentRepository(db),
		AliveLogs:    repository.NewAliveLogRepository(db),
	}

	if cfg.Storage.Backend == config.BackendMongo {
		conn, err := database.NewMongoConnection(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		app.Mongo = conn
		app.Log.Info("MongoDB connected successfully")

		if err := mongodb.EnsureIndexes(ctx, conn.Database); err != nil {
			return nil, fmt.Errorf("failed to create MongoDB indexes: %w", err)
		}

		repos.Services = mongodb.NewServiceRepository(conn.Database)
		repos.Appointments = mongodb.NewAppointmentRepository(conn.Database)
		repos.AliveLogs = mongodb.NewAliveLogRepository(conn.Database)
	}

	return repos, nil
}

// NewMemoryRepositories backs every repository with one shared store.
func NewMemoryRepositories(store *memory.Store) *Repositories {
	return &Repositories{
		Patients:     memory.NewPatientRepository(store),
		Doctors:      memory.NewDoctorRepository(store),
		Services:     memory.NewServiceRepository(store),
		Appointments: memory.NewAppointmentRepository(store),
		AliveLogs:    memory.NewAliveLogRepository(store),
	}
}

// NewHandler wires usecases, handlers and middleware for the configured module.
func NewHandler(cfg *config.Config, log *logrus.Logger, repos *Repositories, guard *service.BookingGuard, reg *prometheus.Registry) http.Handler {
	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize services
	trail := service.NewAppointmentTrail(log, repos.AliveLogs)
	identityParser := jwt.NewIdentityParser(cfg.Proxy)

	// Initialize usecases
	patientUsecase := usecase.NewPatientUsecase(log, repos.Patients)
	doctorUsecase := usecase.NewDoctorUsecase(log, repos.Doctors)
	serviceUsecase := usecase.NewServiceUsecase(log, repos.Services, repos.Appointments, guard)
	appointmentUsecase := usecase.NewAppointmentUsecase(log, repos.Appointments, repos.Services, guard, trail)
	aliveLogUsecase := usecase.NewAliveLogUsecase(log, repos.AliveLogs, repos.Appointments, repos.Patients, repos.Doctors)
	dashboardUsecase := usecase.NewDashboardUsecase(log, repos.Patients, repos.Doctors, repos.Appointments)

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Patient:     handler.NewPatientHandler(patientUsecase, customValidator),
		Doctor:      handler.NewDoctorHandler(doctorUsecase, customValidator),
		Service:     handler.NewServiceHandler(serviceUsecase, customValidator),
		Appointment: handler.NewAppointmentHandler(appointmentUsecase, customValidator),
		Alive:       handler.NewAliveHandler(aliveLogUsecase, customValidator),
		Dashboard:   handler.NewDashboardHandler(dashboardUsecase),
		System:      handler.NewSystemHandler(identityParser.Verifies()),
	}

	// Initialize middleware
	requestMiddleware := middleware.NewRequestMiddleware(log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins)
	identityMiddleware := middleware.NewIdentityMiddleware(identityParser, cfg.Proxy.TokenHeader, log)

	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(reg, cfg.App.Service)

	// Initialize router
	router := deliveryHttp.NewRouter(cfg.App, handlers, requestMiddleware, corsMiddleware, identityMiddleware, httpMetrics)
	return router.Setup()
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close releases the booking guard and every open connection.
func (app *App) Close() {
	if app.BookingGuard != nil {
		app.BookingGuard.Stop()
	}

	if app.DB != nil {
		if err := database.ClosePostgres(app.DB); err != nil {
			app.Log.Warnf("Failed to close database: %v", err)
		}
	}

	if app.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Mongo.Close(ctx); err != nil {
			app.Log.Warnf("Failed to close MongoDB: %v", err)
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
