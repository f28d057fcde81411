package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/trio-pos/pkg/config"
	"github.com/angelmondragon/trio-pos/pkg/db"
	"github.com/angelmondragon/trio-pos/pkg/logger"
)

// MaybeRun applies pending migrations when the sqlite store is configured to migrate on start.
func MaybeRun(ctx context.Context, cfg config.StoreConfig, logg *logger.Logger, client *db.Client) error {
	if !cfg.AutoMigrate {
		return nil
	}
	if logg == nil {
		logg = logger.Nop()
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "sqlite_path", cfg.SQLitePath)
	logg.Info(ctx, "running goose migrations")
	if err := Up(ctx, sqlDB, logg); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}
