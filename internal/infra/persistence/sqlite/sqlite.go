// Package sqlite wires the embedded SQLite database used for local
// contact storage.
package sqlite

import (
	"context"
	"log/slog"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/TimLeitch/ms-contact-sync/config"
	"github.com/TimLeitch/ms-contact-sync/internal/infra/persistence/model"
)

// Params defines the dependencies for creating the database connection.
type Params struct {
	fx.In

	Config    *config.Config
	Logger    *slog.Logger
	Lifecycle fx.Lifecycle
}

// New opens the SQLite database, migrates the schema and registers a
// shutdown hook that closes the underlying connection.
func New(params Params) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(params.Config.SQLite.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}

	if err := db.AutoMigrate(&model.ContactModel{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate contacts schema")
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return errors.Wrap(err, "failed to access sql.DB")
			}
			params.Logger.Info("closing sqlite database", slog.String("path", params.Config.SQLite.Path))
			return sqlDB.Close()
		},
	})

	return db, nil
}
