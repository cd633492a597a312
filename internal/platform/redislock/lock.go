package redislock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

const (
	DefaultPrefix = "voicewatch:ingest:"
	DefaultTTL    = 2 * time.Minute
	pollInterval  = 100 * time.Millisecond
)

// ErrNotAcquired is returned when the wait deadline passes before the key frees up.
var ErrNotAcquired = errors.New("redislock: lock not acquired")

// releaseScript deletes the key only when it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
	wait   time.Duration
}

type Options struct {
	Prefix string
	TTL    time.Duration
	// Wait bounds how long Acquire polls for a held key.
	Wait time.Duration
}

// Dial connects to addr and pings it, mirroring how the rest of the backend opens redis.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func New(log *logger.Logger, rdb goredis.UniversalClient, opts Options) (*Locker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Wait <= 0 {
		opts.Wait = opts.TTL
	}
	return &Locker{
		log:    log.With("service", "RedisLocker"),
		rdb:    rdb,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		wait:   opts.Wait,
	}, nil
}

func (l *Locker) Key(name string) string {
	return l.prefix + name
}

// Acquire blocks until name is locked by this caller, ctx ends, or the wait bound passes.
// The returned release func is safe to call more than once.
func (l *Locker) Acquire(ctx context.Context, name string) (func(), error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("redislock: empty lock name")
	}
	key := l.Key(name)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redislock: acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// Release must outlive a cancelled request context.
		relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, l.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			l.log.Warn("redis lock release failed", "key", key, "error", err)
		}
	}, nil
}
