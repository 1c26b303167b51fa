package initializers

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "DB_DRIVER", "DIRECT_URL", "SQLITE_PATH", "STORAGE_KEY", "LOG_LEVEL", "ENVIRONMENT",
	"SEARCH_DEBOUNCE_MS", "DEFAULT_PAGE_SIZE", "ELASTICSEARCH_URL", "S3_REGION", "S3_ENDPOINT",
	"S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "EXPORT_ARCHIVE_DIR", "EXPORT_CRON_SPEC",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM",
}

func clearConfigEnv(t *testing.T) {
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "data/coi.db", cfg.SQLitePath)
	assert.Equal(t, "coi-dashboard-data", cfg.StorageKey)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, "0 2 * * *", cfg.ExportCronSpec)
	assert.False(t, cfg.S3Enabled())
	assert.False(t, cfg.SMTPEnabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DIRECT_URL", "postgres://u:p@localhost/coi")
	t.Setenv("SEARCH_DEBOUNCE_MS", "0")
	t.Setenv("S3_REGION", "eu-west-1")
	t.Setenv("S3_BUCKET", "exports")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "noreply@example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, time.Duration(0), cfg.SearchDebounce)
	assert.True(t, cfg.S3Enabled())
	assert.True(t, cfg.SMTPEnabled())
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without dsn", map[string]string{"DB_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"DB_DRIVER": "mongo"}},
		{"bad debounce", map[string]string{"SEARCH_DEBOUNCE_MS": "soon"}},
		{"negative debounce", map[string]string{"SEARCH_DEBOUNCE_MS": "-5"}},
		{"bad page size", map[string]string{"DEFAULT_PAGE_SIZE": "ten"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestConnectAndMigrateSQLite(t *testing.T) {
	cfg := &AppConfig{
		DBDriver:   DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "nested", "coi.db"),
		LogLevel:   "warn",
	}
	db, err := ConnectDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	require.NoError(t, Migrate(db, DriverSQLite))
	assert.True(t, db.Migrator().HasTable("kv_entries"))

	// running again is a no-op
	require.NoError(t, Migrate(db, DriverSQLite))
}

func TestMigrateUnknownDriver(t *testing.T) {
	cfg := &AppConfig{DBDriver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "coi.db")}
	db, err := ConnectDB(cfg)
	require.NoError(t, err)
	assert.Error(t, Migrate(db, "mysql"))
}

func TestConnectDBPostgresRequiresDSN(t *testing.T) {
	_, err := ConnectDB(&AppConfig{DBDriver: DriverPostgres})
	assert.Error(t, err)
}
