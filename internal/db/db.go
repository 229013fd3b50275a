// Package db opens the gorm connection and brings the schema up to date.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diewo77/bill-ease/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Open connects using cfg.Driver. Postgres connections are retried to give
// the server time to start; sqlite opens (and creates) the file directly.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel(cfg))}

	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "." && cfg.Path != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		d, err := gorm.Open(sqlite.Open(cfg.Path), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
		}
		log.Info("database connected", zap.String("driver", "sqlite"), zap.String("path", cfg.Path))
		return d, nil
	case "postgres":
		return openPostgres(ctx, NormalizeDSN(cfg.URL()), gcfg, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// logLevel keeps gorm quiet unless database.debug is set.
func logLevel(cfg config.DatabaseConfig) logger.LogLevel {
	if cfg.Debug {
		return logger.Info
	}
	return logger.Silent
}

func openPostgres(ctx context.Context, dsn string, gcfg *gorm.Config, log *zap.Logger) (*gorm.DB, error) {
	var (
		d   *gorm.DB
		err error
	)
	for i := 1; i <= connectAttempts; i++ {
		d, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			err = d.WithContext(ctx).Exec("SELECT 1").Error
		}
		if err == nil {
			break
		}
		log.Warn("database not ready, retrying",
			zap.Int("attempt", i), zap.Int("max", connectAttempts), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	log.Info("database connected", zap.String("driver", "postgres"), zap.String("dsn", MaskDSN(dsn)))
	return d, nil
}
