package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"printsociety/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationURL converts the pool connection string to the pgx/v5 migrate driver scheme.
func MigrationURL(cfg config.DatabaseConfig) string {
	return "pgx5://" + strings.TrimPrefix(cfg.ConnectionString(), "postgres://")
}

// Migrate applies the embedded schema migrations. steps > 0 applies that many, steps < 0 rolls
// back that many, and zero migrates all the way up.
func Migrate(databaseURL string, steps int, logger zerolog.Logger) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("could not read migration version: %w", verr)
	}

	logger.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Bool("changed", err == nil).
		Msg("database migrations applied")

	return nil
}
