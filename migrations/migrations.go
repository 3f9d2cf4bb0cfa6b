// Package migrations embeds the schema for every supported database driver.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	_ "github.com/golang-migrate/migrate/v4/source/file"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Apply runs every pending up migration of dialect against driver. A non-empty
// dir replaces the embedded files with the ones found on disk.
func Apply(driver database.Driver, dbName, dialect, dir string, logger *zap.Logger) error {
	var (
		m   *migrate.Migrate
		err error
	)
	if dir != "" {
		m, err = migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%v", dir), dbName, driver)
	} else {
		src, serr := iofs.New(FS, dialect)
		if serr != nil {
			return fmt.Errorf("iofs.New: %v", serr)
		}
		m, err = migrate.NewWithInstance("iofs", src, dbName, driver)
	}
	if err != nil {
		return fmt.Errorf("migrate.NewWithDatabaseInstance: %v", err)
	}

	logger.Info("applying migrations", zap.String("dialect", dialect), zap.String("db", dbName))
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("error when migrating: %v", err)
		}
		logger.Info("nothing to migrate")
		return nil
	}
	logger.Info("migrated successfully")
	return nil
}
