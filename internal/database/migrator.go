package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// versionTable records the applied schema version.
const versionTable = "schema_version"

// Migrate applies the embedded store schema (products, users, carts,
// orders, contact messages, chat sessions, campaigns) up to the latest
// version over a dedicated connection.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	conn, err := pgx.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}
	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	to := int32(len(m.Migrations))
	if from == to {
		logger.Info().Int32("version", to).Msg("database schema up to date")
		return nil
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database schema from %d: %w", from, err)
	}
	logger.Info().Int32("from", from).Int32("to", to).Msg("migrated database schema")
	return nil
}
