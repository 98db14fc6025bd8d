package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, loggerService, err := loadConfig()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			return migrateDatabase(ctx, log, cfg)
		},
	}
}

func migrateDatabase(ctx context.Context, log *zerolog.Logger, cfg *config.Config) error {
	if err := database.Migrate(ctx, log, cfg); err != nil {
		log.Error().Err(err).Msg("failed to migrate database")
		return err
	}
	return nil
}
