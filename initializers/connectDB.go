package initializers

import (
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// ConnectDB opens the key-value database for the configured driver.
func ConnectDB(cfg *AppConfig) (*gorm.DB, error) {
	log := Component("database")
	log.WithField("driver", cfg.DBDriver).Info("Connecting to database")

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("env variable DIRECT_URL is empty")
		}
		dialector = postgres.New(postgres.Config{
			PreferSimpleProtocol: true, // Disable implicit prepared statement usage
			DriverName:           "postgres",
			DSN:                  cfg.DatabaseURL,
		})
	case DriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		dialector = sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        cfg.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	gormLogLevel := logger.Warn
	if cfg.LogLevel == "debug" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:          false,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	log.Info("Database connection successful")
	return db, nil
}
