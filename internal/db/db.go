package db

import (
	"fmt"
	"time"

	"github.com/diewo77/go-talent/internal/config"
	"github.com/diewo77/go-talent/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectAttempts = 5

// Open connects to the configured database. Postgres is retried a few times to
// give the container time to start.
func Open(cfg config.DatabaseConfig, dev bool, log *logger.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormLogLevel(dev)),
	}

	switch cfg.Driver {
	case "sqlite":
		log.Info("opening sqlite database", "path", cfg.SQLitePath)
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	case "postgres", "":
		log.Info("connecting to database", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.DBName, "user", cfg.User)
		var db *gorm.DB
		var err error
		for i := 0; i < connectAttempts; i++ {
			db, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
			if err == nil {
				return db, nil
			}
			log.Warn("database connection failed, retrying", "attempt", i+1, "error", err)
			time.Sleep(2 * time.Second)
		}
		return nil, fmt.Errorf("connect postgres: %w", err)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func gormLogLevel(dev bool) gormlogger.LogLevel {
	if dev {
		return gormlogger.Warn
	}
	return gormlogger.Error
}
