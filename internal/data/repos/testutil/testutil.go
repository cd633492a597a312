package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/voicewatch-backend/internal/data/db"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

var dbSeq int64

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

// DB returns a migrated database private to the test. It uses TEST_POSTGRES_DSN when set,
// otherwise a fresh in-memory SQLite database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	var dialector gorm.Dialector
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		name := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
		dialector = sqlite.Open(name)
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrateAll(gdb); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return gdb
}

// Tx opens a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
