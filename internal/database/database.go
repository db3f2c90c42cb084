package database

import (
	"fmt"
	"strings"

	"portfolio-api/config"
	"portfolio-api/internal/cache"
	"portfolio-api/internal/logs"
	"portfolio-api/internal/profile"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres, or to a sqlite file when DB_DRIVER=sqlite.
func Open(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch strings.ToLower(cfg.DBDriver) {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.DBPath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite %s: %w", cfg.DBPath, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite allows one writer at a time.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	case "postgres", "":
		db, err := gorm.Open(postgres.Open(cfg.DSN()), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&cache.Record{},
		&logs.SystemLog{},
		&profile.Profile{},
		&profile.Experience{},
		&profile.Project{},
		&profile.Skill{},
		&profile.Template{},
		&profile.Testimonial{},
	)
}
