// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"log/slog"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"passport/config"
	"passport/internal/infra/persistence/model"
)

// New opens the database connection and migrates the schema.
// TranslateError is enabled so constraint violations surface as GORM's
// typed errors instead of driver-specific ones.
func New(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	if cfg.Postgres == nil {
		return nil, errors.New("postgres configuration must be provided")
	}

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}

	if err := db.AutoMigrate(&model.UserModel{}, &model.ResetTokenModel{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate schema")
	}

	logger.Info("postgres connected", slog.String("host", cfg.Postgres.Host), slog.String("db", cfg.Postgres.DBName))

	return db, nil
}
