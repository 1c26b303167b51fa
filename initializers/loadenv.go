package initializers

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// AppConfig holds all configuration for the dashboard backend.
type AppConfig struct {
	Port        string
	DBDriver    string
	DatabaseURL string // postgres DSN, DIRECT_URL
	SQLitePath  string
	StorageKey  string
	LogLevel    string
	Environment string

	SearchDebounce  time.Duration
	DefaultPageSize int

	ElasticsearchURL string

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	ExportArchiveDir string
	ExportCronSpec   string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// LoadConfig reads configuration from the environment and the .env file if present.
func LoadConfig() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:             envOr("PORT", "8080"),
		DBDriver:         strings.ToLower(envOr("DB_DRIVER", DriverSQLite)),
		DatabaseURL:      os.Getenv("DIRECT_URL"),
		SQLitePath:       envOr("SQLITE_PATH", "data/coi.db"),
		StorageKey:       envOr("STORAGE_KEY", "coi-dashboard-data"),
		LogLevel:         strings.ToLower(envOr("LOG_LEVEL", "info")),
		Environment:      strings.ToLower(envOr("ENVIRONMENT", "development")),
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		ExportArchiveDir: envOr("EXPORT_ARCHIVE_DIR", "data/exports"),
		ExportCronSpec:   envOr("EXPORT_CRON_SPEC", "0 2 * * *"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         envOr("SMTP_PORT", "587"),
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:         os.Getenv("SMTP_FROM"),
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DIRECT_URL is not set for the postgres driver")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	debounceMs, err := strconv.Atoi(envOr("SEARCH_DEBOUNCE_MS", "300"))
	if err != nil || debounceMs < 0 {
		return nil, fmt.Errorf("invalid SEARCH_DEBOUNCE_MS %q", os.Getenv("SEARCH_DEBOUNCE_MS"))
	}
	cfg.SearchDebounce = time.Duration(debounceMs) * time.Millisecond

	cfg.DefaultPageSize, err = strconv.Atoi(envOr("DEFAULT_PAGE_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_PAGE_SIZE: %w", err)
	}

	return cfg, nil
}

// S3Enabled reports whether export archives go to a bucket instead of the local directory.
func (c *AppConfig) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

func (c *AppConfig) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
