package redislock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(logger.Nop(), nil, Options{}); err == nil {
		t.Fatalf("expected error without redis client")
	}
}

func TestNewDefaults(t *testing.T) {
	l, err := New(logger.Nop(), goredis.NewClient(&goredis.Options{Addr: "localhost:0"}), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := l.Key("guide_1"); got != "voicewatch:ingest:guide_1" {
		t.Fatalf("key: want=%q got=%q", "voicewatch:ingest:guide_1", got)
	}
	if l.ttl != DefaultTTL || l.wait != DefaultTTL {
		t.Fatalf("ttl/wait defaults: got=%s/%s", l.ttl, l.wait)
	}
}

func TestLockerIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("set REDIS_ADDR to run redis lock integration tests")
	}
	ctx := context.Background()
	rdb, err := Dial(ctx, addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	l, err := New(logger.Nop(), rdb, Options{Prefix: "voicewatch:test:", TTL: 5 * time.Second, Wait: 300 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	release, err := l.Acquire(ctx, "doc")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := l.Acquire(ctx, "doc"); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("second Acquire: want ErrNotAcquired got=%v", err)
	}
	release()
	release()

	again, err := l.Acquire(ctx, "doc")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	again()
}
