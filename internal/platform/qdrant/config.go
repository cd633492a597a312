package qdrant

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultCollection = "voice_agent_knowledge_base"
	DefaultVectorDim  = 1536
	DefaultDistance   = "Cosine"
	DefaultTimeout    = 10 * time.Second
)

type Config struct {
	URL        string
	APIKey     string
	Collection string
	VectorDim  int
	Distance   string
	Timeout    time.Duration
}

type ConfigErrorCode string

const (
	ConfigErrorMissingURL        ConfigErrorCode = "missing_url"
	ConfigErrorInvalidURL        ConfigErrorCode = "invalid_url"
	ConfigErrorMissingAPIKey     ConfigErrorCode = "missing_api_key"
	ConfigErrorMissingCollection ConfigErrorCode = "missing_collection"
	ConfigErrorInvalidVectorDim  ConfigErrorCode = "invalid_vector_dim"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid qdrant config"
	}
	switch e.Code {
	case ConfigErrorMissingURL:
		return "QDRANT_URL is required"
	case ConfigErrorInvalidURL:
		return fmt.Sprintf("invalid QDRANT_URL=%q; expected absolute URL like http://qdrant:6333", e.Value)
	case ConfigErrorMissingAPIKey:
		return "QDRANT_API_KEY is required"
	case ConfigErrorMissingCollection:
		return "QDRANT_COLLECTION is required"
	case ConfigErrorInvalidVectorDim:
		return fmt.Sprintf("invalid QDRANT_VECTOR_DIM=%q; expected positive integer", e.Value)
	default:
		return "invalid qdrant config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveConfigFromEnv reads QDRANT_* variables, filling the knowledge-base defaults
// for collection and dimension.
func ResolveConfigFromEnv() (Config, error) {
	cfg := Config{
		URL:        strings.TrimSpace(os.Getenv("QDRANT_URL")),
		APIKey:     strings.TrimSpace(os.Getenv("QDRANT_API_KEY")),
		Collection: strings.TrimSpace(os.Getenv("QDRANT_COLLECTION")),
		VectorDim:  DefaultVectorDim,
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if rawDim := strings.TrimSpace(os.Getenv("QDRANT_VECTOR_DIM")); rawDim != "" {
		parsed, err := strconv.Atoi(rawDim)
		if err != nil {
			return Config{}, &ConfigError{Code: ConfigErrorInvalidVectorDim, Value: rawDim, Cause: err}
		}
		cfg.VectorDim = parsed
	}
	cfg = withDefaults(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.URL) == "" {
		return &ConfigError{Code: ConfigErrorMissingURL}
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
		return &ConfigError{Code: ConfigErrorInvalidURL, Value: cfg.URL, Cause: err}
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &ConfigError{Code: ConfigErrorMissingAPIKey}
	}
	if strings.TrimSpace(cfg.Collection) == "" {
		return &ConfigError{Code: ConfigErrorMissingCollection}
	}
	if cfg.VectorDim <= 0 {
		return &ConfigError{Code: ConfigErrorInvalidVectorDim, Value: strconv.Itoa(cfg.VectorDim)}
	}
	return nil
}

func withDefaults(cfg Config) Config {
	if strings.TrimSpace(cfg.Distance) == "" {
		cfg.Distance = DefaultDistance
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.URL = strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	return cfg
}
