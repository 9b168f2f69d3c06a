package main

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"community/config"
	"community/internal/domain/lifecycle"
	"community/internal/errors"
	logs "community/internal/infra/log"
	"community/internal/infra/persistence/model"
	"community/internal/infra/persistence/postgres"
)

func main() {
	var (
		db     *gorm.DB
		logger *slog.Logger
	)

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.New,
			postgres.New,
		),
		fx.Populate(&db, &logger),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	if err := app.Start(startCtx); err != nil {
		slog.Error("Failed to start migration", slog.Any("error", err))
		os.Exit(1)
	}

	migrateErr := migrate(db, logger)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		logger.Warn("Failed to close database", slog.Any("error", err))
	}

	if migrateErr != nil {
		logger.Error("Migration failed", slog.Any("error", migrateErr))
		os.Exit(1)
	}
}

func migrate(db *gorm.DB, logger *slog.Logger) error {
	models := model.All()
	if err := db.AutoMigrate(models...); err != nil {
		return errors.Wrap(err, "failed to auto-migrate schema")
	}

	logger.Info("Schema migrated", slog.Int("tables", len(models)))

	return nil
}
