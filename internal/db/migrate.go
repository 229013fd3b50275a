package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/bill-ease/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var requiredTables = []string{"users", "products", "invoices", "invoice_items", "agency_settings", "login_brandings"}

// Migrate brings the schema up to date. With sql set (postgres only) the
// embedded SQL migrations run through golang-migrate; otherwise gorm
// AutoMigrate is used.
func Migrate(d *gorm.DB, sql bool, dsn string, log *zap.Logger) error {
	if sql {
		log.Info("running sql migrations")
		if err := RunSQLMigrations(ToURLDSN(NormalizeDSN(dsn))); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range models.All() {
			if err := d.AutoMigrate(m); err != nil {
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
	}

	for _, table := range requiredTables {
		if !d.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return Seed(d)
}

// RunSQLMigrations applies the embedded migrations to the postgres database at url.
func RunSQLMigrations(url string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Seed inserts the default sign-in branding once.
func Seed(d *gorm.DB) error {
	var count int64
	if err := d.Model(&models.LoginBranding{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return d.Create(&models.LoginBranding{DisplayName: models.DefaultDisplayName}).Error
}
