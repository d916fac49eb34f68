package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"gotasker/pkg/logger"
)

// Константы для сообщений о состоянии схемы.
const (
	ErrNewMigrator    = "failed to initialize schema migrator"
	ErrUpgradeSchema  = "failed to upgrade database schema"
	LogSchemaCurrent  = "database schema is already up to date"
	LogSchemaUpgraded = "database schema upgraded"
)

// MigrateDSN приводит схему базы данных к актуальной версии,
// применяя миграции из указанного пути.
func MigrateDSN(ctx context.Context, dsn string, migrationsPath string) error {
	log := logger.Log(ctx)

	migrator, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		log.Error(ctx, ErrNewMigrator, zap.Error(err), zap.String("path", migrationsPath))
		return fmt.Errorf("%s: %w", ErrNewMigrator, err)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info(ctx, LogSchemaCurrent)
			return nil
		}
		log.Error(ctx, ErrUpgradeSchema, zap.Error(err), zap.String("path", migrationsPath))
		return fmt.Errorf("%s: %w", ErrUpgradeSchema, err)
	}

	log.Info(ctx, LogSchemaUpgraded, zap.String("path", migrationsPath))
	return nil
}
