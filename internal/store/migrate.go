package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"authflow/internal/domain"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded postgres migrations.
func Migrate(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	goose.SetBaseFS(migrations)
	goose.SetLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo))
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// AutoMigrate creates the schema from the gorm models. It is meant for
// SQLite databases used in tests; postgres uses Migrate.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&domain.User{}, &domain.OneTimeCode{})
}
