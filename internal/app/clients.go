package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/voicewatch-backend/internal/config"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	"github.com/yungbote/voicewatch-backend/internal/platform/openai"
	"github.com/yungbote/voicewatch-backend/internal/platform/qdrant"
	"github.com/yungbote/voicewatch-backend/internal/platform/redislock"
)

// Clients are the process-scoped network clients. Any of them may be nil when its
// backend is not configured.
type Clients struct {
	OpenAI openai.Client
	Qdrant *qdrant.Client
	Redis  *goredis.Client
	Locker *redislock.Locker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg config.Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// OpenAI, for embeddings and the AI endpoints
	if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
		c, err := openai.NewClient(log, openai.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			EmbedModel: cfg.OpenAI.EmbedModel,
			ChatModel:  cfg.OpenAI.ChatModel,
			Timeout:    cfg.OpenAI.Timeout.Std(),
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		out.OpenAI = c
	} else {
		log.Warn("OPENAI_API_KEY not set; AI endpoints disabled")
	}

	// Qdrant
	if cfg.RAG.VectorBackend == config.VectorQdrant {
		c, err := qdrant.NewClient(log, qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
			VectorDim:  cfg.Qdrant.VectorDim,
			Timeout:    cfg.Qdrant.Timeout.Std(),
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init qdrant client: %w", err)
		}
		out.Qdrant = c
	}

	// Redis, for the per-document ingest lock
	if addr := strings.TrimSpace(cfg.Redis.Addr); addr != "" {
		rdb, err := redislock.Dial(ctx, addr)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		locker, err := redislock.New(log, rdb, redislock.Options{TTL: cfg.Redis.LockTTL.Std()})
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis lock: %w", err)
		}
		out.Redis = rdb
		out.Locker = locker
	}

	return out, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
