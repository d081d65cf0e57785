package mongo

import (
	"errors"
	"fmt"

	"github.com/Rrens/collabhub/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

// Migration commands understood by RunMigrations
const (
	MigrateUp      = "up"
	MigrateDown    = "down"
	MigrateVersion = "version"
)

// RunMigrations applies the index migrations found at cfg.MigrationsPath.
// Down rolls back a single step.
func RunMigrations(cfg config.MongoConfig, command string) error {
	m, err := migrate.New(cfg.MigrationsPath, cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	switch command {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Steps(-1)
	case MigrateVersion:
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info().Msg("Database migration: no version applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read migration version: %w", err)
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database migration: current version")
		return nil
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Str("command", command).Msg("Database migration: no changes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrate %s: %w", command, err)
	}

	log.Info().Str("command", command).Msg("Database migration: success")
	return nil
}
