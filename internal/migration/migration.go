package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	billdomain "github.com/smallbiznis/billdesk/internal/bill/domain"
	"github.com/smallbiznis/billdesk/internal/config"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	"gorm.io/gorm"
)

//go:embed migrations/postgres/*.sql migrations/mysql/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// Run brings the bills and customers tables up to date. The local sqlite
// store is migrated from the models; server databases replay the embedded
// SQL files.
func Run(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	switch dbType {
	case config.DBTypeSQLite:
		return AutoMigrate(conn)
	case config.DBTypePostgres, config.DBTypeMySQL:
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB, dbType)
	default:
		return fmt.Errorf("unsupported database type %q", dbType)
	}
}

func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&customerdomain.Customer{}, &billdomain.Bill{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func RunMigrations(db *sql.DB, dbType string) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, path.Join(migrationsDir, dbType))
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := newDriver(db, dbType)
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, dbType, driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

func newDriver(db *sql.DB, dbType string) (database.Driver, error) {
	switch dbType {
	case config.DBTypePostgres:
		return postgres.WithInstance(db, &postgres.Config{})
	case config.DBTypeMySQL:
		return mysql.WithInstance(db, &mysql.Config{})
	default:
		return nil, fmt.Errorf("no migration driver for %q", dbType)
	}
}

// Files lists the embedded migration files for dbType in apply order.
func Files(dbType string) ([]string, error) {
	entries, err := fs.ReadDir(embeddedMigrations, path.Join(migrationsDir, dbType))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
