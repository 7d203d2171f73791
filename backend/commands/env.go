// Package commands holds the subcommands of the university-tests binary.
package commands

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nikitalevshuk/university-tests/backend/config"
	"github.com/nikitalevshuk/university-tests/backend/utils"
)

type environment struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *gorm.DB
}

// openEnvironment loads configuration, builds the logger and connects to
// the database. The caller closes it.
func openEnvironment() (*environment, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := utils.InitLogger(utils.LoggerConfig{
		Format:       cfg.LogFormat,
		Level:        cfg.LogLevel,
		EnableColors: true,
	})

	db, err := utils.InitDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, logger: logger, db: db}, nil
}

func (e *environment) Close() error {
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
