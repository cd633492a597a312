package app

import (
	"context"
	"fmt"

	"github.com/yungbote/voicewatch-backend/internal/config"
	"github.com/yungbote/voicewatch-backend/internal/observability"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	"github.com/yungbote/voicewatch-backend/internal/rag/chunking"
	"github.com/yungbote/voicewatch-backend/internal/rag/embedding"
	"github.com/yungbote/voicewatch-backend/internal/rag/index"
	knowledgesvc "github.com/yungbote/voicewatch-backend/internal/services/knowledge"
)

func wireEmbedder(log *logger.Logger, cfg config.Config, clients Clients) (*embedding.Embedder, error) {
	var provider embedding.Provider
	switch cfg.RAG.EmbeddingBackend {
	case config.EmbeddingOpenAI:
		if clients.OpenAI == nil {
			return nil, &config.ConfigurationError{Field: "OPENAI_API_KEY", Reason: "is required when EMBEDDING_BACKEND=openai"}
		}
		provider = clients.OpenAI
	case config.EmbeddingHash:
		log.Warn("using hash embeddings; search quality is lexical only")
		provider = embedding.NewHashProvider(cfg.Qdrant.VectorDim)
	default:
		return nil, &config.ConfigurationError{Field: "EMBEDDING_BACKEND", Reason: fmt.Sprintf("unsupported %q", cfg.RAG.EmbeddingBackend)}
	}
	return embedding.New(log, provider, embedding.Options{
		BatchSize: cfg.RAG.BatchSize,
		Dimension: cfg.Qdrant.VectorDim,
	})
}

func wireVectorIndex(log *logger.Logger, cfg config.Config, clients Clients, metrics *observability.Metrics) (index.VectorIndex, error) {
	var idx index.VectorIndex
	switch cfg.RAG.VectorBackend {
	case config.VectorQdrant:
		q, err := index.NewQdrant(log, clients.Qdrant)
		if err != nil {
			return nil, fmt.Errorf("init qdrant index: %w", err)
		}
		idx = q
	case config.VectorMemory:
		log.Warn("using in-memory vector index; points are lost on restart")
		idx = index.NewMemory(cfg.Qdrant.VectorDim)
	default:
		return nil, &config.ConfigurationError{Field: "VECTOR_BACKEND", Reason: fmt.Sprintf("unsupported %q", cfg.RAG.VectorBackend)}
	}
	return index.NewInstrumented(idx, metrics), nil
}

func wireKnowledge(log *logger.Logger, cfg config.Config, clients Clients, metrics *observability.Metrics) (knowledgesvc.Service, error) {
	emb, err := wireEmbedder(log, cfg, clients)
	if err != nil {
		return nil, err
	}
	idx, err := wireVectorIndex(log, cfg, clients, metrics)
	if err != nil {
		return nil, err
	}
	opts := knowledgesvc.Options{
		Chunking:     chunking.Options{ChunkSize: cfg.RAG.ChunkSize, ChunkOverlap: cfg.RAG.ChunkOverlap},
		DefaultLimit: cfg.RAG.SearchLimit,
	}
	if clients.Locker != nil {
		opts.Locker = clients.Locker
	}
	return knowledgesvc.NewService(log, emb, idx, opts)
}

// NewKnowledge wires only the RAG pipeline, for commands that do not need the database
// or the HTTP surface. The returned close func releases the network clients.
func NewKnowledge(ctx context.Context, log *logger.Logger, cfg config.Config) (knowledgesvc.Service, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	metrics := observability.Init(log, cfg.Metrics.Enabled)
	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := wireKnowledge(log, cfg, clients, metrics)
	if err != nil {
		clients.Close()
		return nil, nil, err
	}
	return svc, clients.Close, nil
}
