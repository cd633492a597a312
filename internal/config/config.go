package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/voicewatch-backend/internal/platform/envutil"
)

const (
	EmbeddingOpenAI = "openai"
	EmbeddingHash   = "hash"

	VectorQdrant = "qdrant"
	VectorMemory = "memory"

	DefaultConfigPath = "config/config.yaml"
)

// Duration decodes "5s" style strings from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	RAG       RAGConfig       `yaml:"rag"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	MCP       MCPConfig       `yaml:"mcp"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

type HTTPConfig struct {
	Addr            string   `yaml:"addr"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

type OpenAIConfig struct {
	APIKey     string   `yaml:"api_key"`
	BaseURL    string   `yaml:"base_url"`
	EmbedModel string   `yaml:"embed_model"`
	ChatModel  string   `yaml:"chat_model"`
	Timeout    Duration `yaml:"timeout"`
	MaxRetries int      `yaml:"max_retries"`
}

type QdrantConfig struct {
	URL        string   `yaml:"url"`
	APIKey     string   `yaml:"api_key"`
	Collection string   `yaml:"collection"`
	VectorDim  int      `yaml:"vector_dim"`
	Timeout    Duration `yaml:"timeout"`
}

type RAGConfig struct {
	EmbeddingBackend string `yaml:"embedding_backend"`
	VectorBackend    string `yaml:"vector_backend"`
	ChunkSize        int    `yaml:"chunk_size"`
	ChunkOverlap     int    `yaml:"chunk_overlap"`
	BatchSize        int    `yaml:"batch_size"`
	SearchLimit      int    `yaml:"search_limit"`
}

type DBConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr    string   `yaml:"addr"`
	LockTTL Duration `yaml:"lock_ttl"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type MCPConfig struct {
	Addr string `yaml:"addr"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	Environment string  `yaml:"environment"`
}

// ConfigurationError is a missing or invalid setting found before any network call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

func Default() Config {
	return Config{
		Log:  LogConfig{Mode: "development"},
		HTTP: HTTPConfig{Addr: ":8080", ShutdownTimeout: Duration(10 * time.Second), CORSOrigins: []string{"http://localhost:3000"}},
		OpenAI: OpenAIConfig{
			BaseURL:    "https://api.openai.com",
			EmbedModel: "text-embedding-3-small",
			ChatModel:  "gpt-4",
			Timeout:    Duration(60 * time.Second),
		},
		Qdrant: QdrantConfig{
			Collection: "voice_agent_knowledge_base",
			VectorDim:  1536,
			Timeout:    Duration(10 * time.Second),
		},
		RAG: RAGConfig{
			EmbeddingBackend: EmbeddingOpenAI,
			VectorBackend:    VectorQdrant,
			ChunkSize:        1000,
			ChunkOverlap:     200,
			BatchSize:        100,
			SearchLimit:      5,
		},
		DB:      DBConfig{Driver: "sqlite", DSN: "file:voicewatch.db?_busy_timeout=5000"},
		Redis:   RedisConfig{LockTTL: Duration(2 * time.Minute)},
		Metrics: MetricsConfig{Addr: ":9090"},
		Telemetry: TelemetryConfig{
			SampleRatio: 1,
			Environment: "development",
		},
	}
}

// Load reads .env (if present), then the YAML file (if present), then environment overrides.
// path may be empty, in which case VOICEWATCH_CONFIG or config/config.yaml is tried.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = envutil.String("VOICEWATCH_CONFIG", DefaultConfigPath)
	}
	if err := loadFile(path, &cfg); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Log.Mode = envutil.String("LOG_MODE", cfg.Log.Mode)
	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	cfg.OpenAI.APIKey = envutil.String("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.BaseURL = envutil.String("OPENAI_BASE_URL", cfg.OpenAI.BaseURL)
	cfg.OpenAI.EmbedModel = envutil.String("OPENAI_EMBED_MODEL", cfg.OpenAI.EmbedModel)
	cfg.OpenAI.ChatModel = envutil.String("OPENAI_CHAT_MODEL", cfg.OpenAI.ChatModel)
	cfg.OpenAI.MaxRetries = envutil.Int("OPENAI_MAX_RETRIES", cfg.OpenAI.MaxRetries)
	cfg.OpenAI.Timeout = Duration(envutil.Duration("OPENAI_TIMEOUT", cfg.OpenAI.Timeout.Std()))

	cfg.Qdrant.URL = envutil.String("QDRANT_URL", cfg.Qdrant.URL)
	cfg.Qdrant.APIKey = envutil.String("QDRANT_API_KEY", cfg.Qdrant.APIKey)
	cfg.Qdrant.Collection = envutil.String("QDRANT_COLLECTION", cfg.Qdrant.Collection)
	cfg.Qdrant.VectorDim = envutil.Int("QDRANT_VECTOR_DIM", cfg.Qdrant.VectorDim)
	cfg.Qdrant.Timeout = Duration(envutil.Duration("QDRANT_TIMEOUT", cfg.Qdrant.Timeout.Std()))

	cfg.RAG.EmbeddingBackend = strings.ToLower(envutil.String("EMBEDDING_BACKEND", cfg.RAG.EmbeddingBackend))
	cfg.RAG.VectorBackend = strings.ToLower(envutil.String("VECTOR_BACKEND", cfg.RAG.VectorBackend))
	cfg.RAG.ChunkSize = envutil.Int("RAG_CHUNK_SIZE", cfg.RAG.ChunkSize)
	cfg.RAG.ChunkOverlap = envutil.Int("RAG_CHUNK_OVERLAP", cfg.RAG.ChunkOverlap)
	cfg.RAG.BatchSize = envutil.Int("RAG_EMBED_BATCH_SIZE", cfg.RAG.BatchSize)
	cfg.RAG.SearchLimit = envutil.Int("RAG_SEARCH_LIMIT", cfg.RAG.SearchLimit)

	cfg.DB.Driver = strings.ToLower(envutil.String("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.DSN = envutil.String("DB_DSN", cfg.DB.DSN)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.LockTTL = Duration(envutil.Duration("REDIS_LOCK_TTL", cfg.Redis.LockTTL.Std()))

	cfg.Auth.JWTSecret = envutil.String("AUTH_JWT_SECRET", cfg.Auth.JWTSecret)

	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = envutil.String("METRICS_ADDR", cfg.Metrics.Addr)
	cfg.MCP.Addr = envutil.String("MCP_ADDR", cfg.MCP.Addr)

	cfg.Telemetry.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Telemetry.Headers)
	cfg.Telemetry.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Telemetry.Insecure)
	cfg.Telemetry.Environment = envutil.String("APP_ENV", cfg.Telemetry.Environment)
}

// Validate fails fast on settings the pipeline cannot run without.
func (c Config) Validate() error {
	switch c.RAG.EmbeddingBackend {
	case EmbeddingOpenAI:
		if strings.TrimSpace(c.OpenAI.APIKey) == "" {
			return &ConfigurationError{Field: "OPENAI_API_KEY", Reason: "is required when EMBEDDING_BACKEND=openai"}
		}
	case EmbeddingHash:
	default:
		return &ConfigurationError{Field: "EMBEDDING_BACKEND", Reason: fmt.Sprintf("must be openai or hash, got %q", c.RAG.EmbeddingBackend)}
	}

	switch c.RAG.VectorBackend {
	case VectorQdrant:
		if strings.TrimSpace(c.Qdrant.URL) == "" {
			return &ConfigurationError{Field: "QDRANT_URL", Reason: "is required when VECTOR_BACKEND=qdrant"}
		}
		if strings.TrimSpace(c.Qdrant.APIKey) == "" {
			return &ConfigurationError{Field: "QDRANT_API_KEY", Reason: "is required when VECTOR_BACKEND=qdrant"}
		}
		if strings.TrimSpace(c.Qdrant.Collection) == "" {
			return &ConfigurationError{Field: "QDRANT_COLLECTION", Reason: "must not be empty"}
		}
	case VectorMemory:
	default:
		return &ConfigurationError{Field: "VECTOR_BACKEND", Reason: fmt.Sprintf("must be qdrant or memory, got %q", c.RAG.VectorBackend)}
	}

	if c.Qdrant.VectorDim <= 0 {
		return &ConfigurationError{Field: "QDRANT_VECTOR_DIM", Reason: "must be positive"}
	}
	if c.RAG.ChunkSize <= 0 {
		return &ConfigurationError{Field: "RAG_CHUNK_SIZE", Reason: "must be positive"}
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return &ConfigurationError{Field: "RAG_CHUNK_OVERLAP", Reason: "must be between 0 and RAG_CHUNK_SIZE-1"}
	}
	if c.RAG.BatchSize <= 0 {
		return &ConfigurationError{Field: "RAG_EMBED_BATCH_SIZE", Reason: "must be positive"}
	}
	if c.OpenAI.MaxRetries < 0 {
		return &ConfigurationError{Field: "OPENAI_MAX_RETRIES", Reason: "must not be negative"}
	}
	return nil
}

// RequireOpenAI reports whether the completion endpoints can run.
func (c Config) RequireOpenAI() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return &ConfigurationError{Field: "OPENAI_API_KEY", Reason: "is required"}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
