package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"VOICEWATCH_CONFIG", "OPENAI_API_KEY", "QDRANT_URL", "QDRANT_API_KEY", "QDRANT_VECTOR_DIM",
		"EMBEDDING_BACKEND", "VECTOR_BACKEND", "RAG_CHUNK_SIZE", "RAG_CHUNK_OVERLAP", "HTTP_ADDR",
		"CORS_ORIGINS", "REDIS_ADDR", "METRICS_ENABLED", "DB_DRIVER", "DB_DSN",
	} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "voice_agent_knowledge_base", cfg.Qdrant.Collection)
	assert.Equal(t, 1536, cfg.Qdrant.VectorDim)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 100, cfg.RAG.BatchSize)
	assert.Equal(t, 5, cfg.RAG.SearchLimit)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
http:
  addr: ":9000"
  shutdown_timeout: 3s
qdrant:
  url: https://qdrant.example
  collection: kb
rag:
  chunk_size: 400
  chunk_overlap: 50
redis:
  lock_ttl: 30s
`)
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout.Std())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "https://qdrant.example", cfg.Qdrant.URL)
	assert.Equal(t, "kb", cfg.Qdrant.Collection)
	assert.Equal(t, 400, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL.Std())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, "http:\n  shutdown_timeout: soon\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func validConfig() Config {
	cfg := Default()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Qdrant.URL = "https://qdrant.example"
	cfg.Qdrant.APIKey = "qk"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*Config)
		field string
	}{
		{name: "valid", mut: func(*Config) {}},
		{name: "missing openai key", mut: func(c *Config) { c.OpenAI.APIKey = " " }, field: "OPENAI_API_KEY"},
		{name: "hash backend needs no key", mut: func(c *Config) { c.OpenAI.APIKey = ""; c.RAG.EmbeddingBackend = EmbeddingHash }},
		{name: "unknown embedding backend", mut: func(c *Config) { c.RAG.EmbeddingBackend = "cohere" }, field: "EMBEDDING_BACKEND"},
		{name: "missing qdrant url", mut: func(c *Config) { c.Qdrant.URL = "" }, field: "QDRANT_URL"},
		{name: "missing qdrant key", mut: func(c *Config) { c.Qdrant.APIKey = "" }, field: "QDRANT_API_KEY"},
		{name: "memory backend needs no qdrant", mut: func(c *Config) { c.Qdrant.URL = ""; c.Qdrant.APIKey = ""; c.RAG.VectorBackend = VectorMemory }},
		{name: "unknown vector backend", mut: func(c *Config) { c.RAG.VectorBackend = "pinecone" }, field: "VECTOR_BACKEND"},
		{name: "zero dim", mut: func(c *Config) { c.Qdrant.VectorDim = 0 }, field: "QDRANT_VECTOR_DIM"},
		{name: "overlap equals size", mut: func(c *Config) { c.RAG.ChunkOverlap = c.RAG.ChunkSize }, field: "RAG_CHUNK_OVERLAP"},
		{name: "zero chunk size", mut: func(c *Config) { c.RAG.ChunkSize = 0 }, field: "RAG_CHUNK_SIZE"},
		{name: "zero batch", mut: func(c *Config) { c.RAG.BatchSize = 0 }, field: "RAG_EMBED_BATCH_SIZE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mut(&cfg)
			err := cfg.Validate()
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr), "want ConfigurationError, got %v", err)
			assert.Equal(t, tc.field, cerr.Field)
		})
	}
}

func TestRequireOpenAI(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.RequireOpenAI())
	cfg.OpenAI.APIKey = "sk"
	require.NoError(t, cfg.RequireOpenAI())
}
