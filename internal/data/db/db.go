package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultSQLiteDSN = "file:voicewatch.db?_busy_timeout=5000"
)

type Config struct {
	Driver string
	DSN    string
	// SlowThreshold is when gorm starts warning about a query.
	SlowThreshold time.Duration
}

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(logg *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := logg.With("service", "DBService")

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverSQLite
	}
	dsn := strings.TrimSpace(cfg.DSN)

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("DB_DSN is required for the postgres driver")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or postgres)", cfg.Driver)
	}

	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	serviceLog.Info("database connected", "driver", driver)
	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
