package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Legal    LegalConfig
	Site     SiteConfig
	Contact  ContactConfig
	CORS     CORSConfig
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// Pretty console output for development
	LogPretty bool `env:"LOG_PRETTY" envDefault:"false"`
}

type ServerConfig struct {
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	GRPCPort        int           `env:"GRPC_PORT" envDefault:"50051"`
	TrustedProxies  []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// GetAddr returns the HTTP server address in format ":port"
func (s ServerConfig) GetAddr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// GetGRPCAddr returns the gRPC health server address in format ":port"
func (s ServerConfig) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", s.GRPCPort)
}

type StorageConfig struct {
	Driver      string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	MaxConn     int32  `env:"DB_MAX_CONN" envDefault:"10"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"sitetools.db"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	// Anonymous requests to guarded routes are redirected here; empty means 401
	LoginURL   string `env:"LOGIN_URL" envDefault:"/accounts/login/"`
	ProfileURL string `env:"PROFILE_URL" envDefault:"/accounts/profile/"`
	// bcrypt hash of the admin API key; empty disables the admin API
	AdminKeyHash string `env:"ADMIN_API_KEY_HASH"`
}

type LegalConfig struct {
	ShowPreviousVersions bool     `env:"SHOW_PREVIOUS_LEGAL_DOCUMENT_VERSIONS" envDefault:"false"`
	ForceAcceptance      bool     `env:"FORCE_LEGAL_ACCEPTANCE" envDefault:"false"`
	ForceWhitelist       []string `env:"FORCE_LEGAL_ACCEPTANCE_WHITELIST_URLS" envSeparator:"," envDefault:"/admin/,/accounts/logout/"`
	ForcedDocument       string   `env:"FORCED_LEGAL_DOCUMENT"`
	// 0 means the latest version of ForcedDocument
	ForcedVersion int64 `env:"FORCED_LEGAL_DOCUMENT_VERSION" envDefault:"0"`
}

type SiteConfig struct {
	UnderMaintenance     bool     `env:"SITE_UNDER_MAINTENANCE" envDefault:"false"`
	MaintenanceWhitelist []string `env:"MAINTENANCE_URL_WHITELIST" envSeparator:","`
	// 0 disables admin alerts for site log entries
	LogMailAdminsLevel int    `env:"SITE_LOG_MAIL_ADMINS_LEVEL" envDefault:"0"`
	RobotsTemplate     string `env:"ROBOTS_TEMPLATE" envDefault:"templates/robots.txt"`
}

type ContactConfig struct {
	MailAlert bool    `env:"CONTACT_MESSAGE_MAIL_ALERT" envDefault:"true"`
	RateLimit float64 `env:"CONTACT_RATE_LIMIT" envDefault:"0.2"` // messages per second per IP
	RateBurst int     `env:"CONTACT_RATE_BURST" envDefault:"3"`
}

type CORSConfig struct {
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	AllowCredentials bool     `env:"ALLOW_CREDENTIALS" envDefault:"true"`
}

// Load reads an optional .env file and parses the environment into a Config
func Load() (*Config, error) {
	// Load .env file (optional - for local development)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and cross-field constraints
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be '%s' or '%s', got '%s'", DriverPostgres, DriverSQLite, c.Storage.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Legal.ForceAcceptance && c.Legal.ForcedDocument == "" {
		return fmt.Errorf("FORCED_LEGAL_DOCUMENT is required when FORCE_LEGAL_ACCEPTANCE is enabled")
	}

	if c.Legal.ForcedVersion < 0 {
		return fmt.Errorf("FORCED_LEGAL_DOCUMENT_VERSION must not be negative")
	}

	return nil
}
