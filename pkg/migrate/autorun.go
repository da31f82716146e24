package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/salonpos/salonpos-backend/pkg/config"
	"github.com/salonpos/salonpos-backend/pkg/db"
	"github.com/salonpos/salonpos-backend/pkg/db/models"
	"github.com/salonpos/salonpos-backend/pkg/logger"
)

// MaybeRunDev brings the schema up to date when running in dev mode with the auto-migrate
// flag on. Postgres goes through goose; sqlite databases are created from the models.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if cfg.DB.IsSQLite() {
		ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": config.DriverSQLite})
		logg.Info(ctx, "auto-migrating sqlite schema")
		if err := AutoMigrateModels(client.DB()); err != nil {
			return err
		}
		logg.Info(ctx, "sqlite schema ready")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}

// AutoMigrateModels creates or updates every table from the gorm models.
func AutoMigrateModels(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate models: %w", err)
	}
	return nil
}
