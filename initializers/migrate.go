package initializers

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations
var migrationFiles embed.FS

// Migrate applies the embedded migrations for driverName to db.
func Migrate(db *gorm.DB, driverName string) error {
	log := Component("migrate")
	log.Info("Starting database migration...")

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("error getting underlying *sql.DB: %w", err)
	}

	var driver database.Driver
	switch driverName {
	case DriverPostgres:
		driver, err = postgres.WithInstance(sqlDB, &postgres.Config{
			MigrationsTable: "schema_migrations",
		})
	case DriverSQLite:
		driver, err = sqlite.WithInstance(sqlDB, &sqlite.Config{
			MigrationsTable: "schema_migrations",
		})
	default:
		return fmt.Errorf("no migrations for driver %q", driverName)
	}
	if err != nil {
		return fmt.Errorf("could not create the %s migration driver: %w", driverName, err)
	}

	source, err := iofs.New(migrationFiles, "migrations/"+driverName)
	if err != nil {
		return fmt.Errorf("error opening embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	log.WithField("version", version).WithField("dirty", dirty).Info("Migration completed successfully")
	return nil
}
