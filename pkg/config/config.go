package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration
type Config struct {
	Environment        string   `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort         int      `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	Database Database
	Redis    Redis
	Auth     Auth
	SMTP     SMTP
	Alerts   Alerts
	Tracing  Tracing
}

// Database holds Postgres settings. URL wins over the discrete fields.
type Database struct {
	URL             string        `envconfig:"DATABASE_URL"`
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"stockroom"`
	Password        string        `envconfig:"DB_PASSWORD" default:"dev"`
	Name            string        `envconfig:"DB_NAME" default:"stockroom"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	ApplySchema     bool          `envconfig:"DB_APPLY_SCHEMA" default:"true"`
}

// Redis backs the shared rate limiter. Empty URL falls back to the
// in-process limiter.
type Redis struct {
	URL string `envconfig:"REDIS_URL"`
}

type Auth struct {
	JWTSecret        string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer        string        `envconfig:"JWT_ISSUER" default:"stockroom"`
	TokenTTL         time.Duration `envconfig:"JWT_TTL" default:"24h"`
	RateLimitPerMin  int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	LoginLimitPerMin int           `envconfig:"LOGIN_RATE_LIMIT_PER_MINUTE" default:"10"`
}

// SMTP configures the email channel. Empty Host logs mails instead of
// sending them.
type SMTP struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM" default:"stockroom@localhost"`
}

type Alerts struct {
	QueueSize     int           `envconfig:"ALERT_QUEUE_SIZE" default:"256"`
	SendTimeout   time.Duration `envconfig:"ALERT_SEND_TIMEOUT" default:"10s"`
	SweepInterval time.Duration `envconfig:"LOW_STOCK_SWEEP_INTERVAL" default:"1m"`
}

// Tracing configures OTLP export. Empty Endpoint disables tracing.
type Tracing struct {
	Endpoint    string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	SampleRatio float64 `envconfig:"OTEL_TRACES_SAMPLE_RATIO" default:"1"`
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must not be empty")
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return nil, fmt.Errorf("invalid OTEL_TRACES_SAMPLE_RATIO: %v", cfg.Tracing.SampleRatio)
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("invalid SERVER_PORT: %d", cfg.ServerPort)
	}
	return &cfg, nil
}

// DSN returns the lib/pq connection string
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}
