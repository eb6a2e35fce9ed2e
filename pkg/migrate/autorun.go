package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gsindri/kaupa-skil-sub004/pkg/config"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
)

// Conn is the slice of db.Client that migrations need.
type Conn interface {
	SQL() (*sql.DB, error)
	Driver() string
}

// MaybeRunDev brings the schema up to date on startup, but only in dev with
// KAUPA_AUTO_MIGRATE set. Other environments run cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, conn Conn) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	sqlDB, err := conn.SQL()
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	src := Source{Driver: conn.Driver()}

	before, err := Version(sqlDB, src)
	if err != nil {
		return fmt.Errorf("auto-migrate: read version: %w", err)
	}
	if err := Run(ctx, sqlDB, src, "up"); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	after, err := Version(sqlDB, src)
	if err != nil {
		return fmt.Errorf("auto-migrate: read version: %w", err)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"driver":       src.Driver,
		"from_version": before,
		"to_version":   after,
	}), "schema migrated")
	return nil
}
