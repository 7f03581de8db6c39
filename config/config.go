package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Route modules a process can serve.
const (
	ServicePatients     = "patients"
	ServiceDoctors      = "doctors"
	ServiceAppointments = "appointments"
	ServiceAlive        = "alive"
	ServiceDashboard    = "dashboard"
	ServiceAll          = "all"
)

// Storage backends for services, appointments and alive logs.
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

var ErrUnknownService = errors.New("unknown service, use one of: patients, doctors, appointments, alive, dashboard, all")

type Config struct {
	App     AppConfig
	Storage StorageConfig
	DB      DBConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Booking BookingConfig
	Proxy   ProxyConfig
}

type AppConfig struct {
	Port           string
	Env            string
	Service        string
	LogLevel       string
	RequestTimeout time.Duration
	CORSOrigins    []string
}

type StorageConfig struct {
	Backend string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type MongoConfig struct {
	URI    string
	DBName string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type BookingConfig struct {
	LockTTL  time.Duration
	LockWait time.Duration
}

// ProxyConfig describes the identity token forwarded by the OAuth2 proxy.
type ProxyConfig struct {
	TokenHeader string
	TokenSecret string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{
		App: AppConfig{
			Port:           viper.GetString("APP_PORT"),
			Env:            viper.GetString("APP_ENV"),
			Service:        strings.ToLower(viper.GetString("APP_SERVICE")),
			LogLevel:       viper.GetString("APP_LOG_LEVEL"),
			RequestTimeout: parseDuration(viper.GetString("APP_REQUEST_TIMEOUT"), 15*time.Second),
			CORSOrigins:    strings.Split(viper.GetString("APP_CORS_ORIGINS"), ","),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(viper.GetString("STORAGE_BACKEND")),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Mongo: MongoConfig{
			URI:    viper.GetString("MONGO_URI"),
			DBName: viper.GetString("MONGO_DB_NAME"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Booking: BookingConfig{
			LockTTL:  parseDuration(viper.GetString("BOOKING_LOCK_TTL"), 10*time.Second),
			LockWait: parseDuration(viper.GetString("BOOKING_LOCK_WAIT"), 3*time.Second),
		},
		Proxy: ProxyConfig{
			TokenHeader: viper.GetString("PROXY_TOKEN_HEADER"),
			TokenSecret: viper.GetString("PROXY_TOKEN_SECRET"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that select code paths at startup.
func (c *Config) Validate() error {
	switch c.App.Service {
	case ServicePatients, ServiceDoctors, ServiceAppointments, ServiceAlive, ServiceDashboard, ServiceAll:
	default:
		return ErrUnknownService
	}

	switch c.Storage.Backend {
	case BackendPostgres, BackendMongo, BackendMemory:
	default:
		return errors.New("unknown storage backend " + c.Storage.Backend + ", use postgres, mongo or memory")
	}

	return nil
}

// NeedsPostgres reports whether the configured backend keeps patients and doctors in PostgreSQL.
func (c *Config) NeedsPostgres() bool {
	return c.Storage.Backend != BackendMemory
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "3000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_SERVICE", ServiceAll)
	viper.SetDefault("APP_LOG_LEVEL", "info")
	viper.SetDefault("APP_CORS_ORIGINS", "*")
	viper.SetDefault("STORAGE_BACKEND", BackendPostgres)

	viper.SetDefault("DB_HOST", "gestmed-postgres")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "gestmed_user")
	viper.SetDefault("DB_PASSWORD", "gestmed_password")
	viper.SetDefault("DB_NAME", "gestmed")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("MONGO_URI", "mongodb://appointments_db:27017")
	viper.SetDefault("MONGO_DB_NAME", "gestmed_appointments_db")

	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")

	viper.SetDefault("PROXY_TOKEN_HEADER", "X-Forwarded-Access-Token")
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
