package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a zap-backed logger. "prod"/"production" emit JSON, "test"/"nop" discard
// everything, any other mode uses the colored development encoder.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "test", "nop":
		return &Logger{SugaredLogger: zap.NewNop().Sugar()}, nil
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// Nop returns a logger that discards all output.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(sanitizeKVs(keysAndValues)...)}
}

// Keys containing these fragments never reach the log sink.
var secretKeyFragments = []string{"token", "authorization", "password", "secret", "api_key", "apikey", "cookie"}

// Caller identifiers are hashed so lines can still be grouped per caller.
var callerKeyFragments = []string{"phone", "caller_id"}

// Transcripts and prompts can be huge; longer string values are cut.
const maxLoggedValueLen = 2048

type redactor struct {
	enabled bool
	salt    string
}

var (
	activeOnce sync.Once
	active     redactor
)

// currentRedactor reads LOG_REDACTION_ENABLED (default on) and LOG_HASH_SALT once.
func currentRedactor() redactor {
	activeOnce.Do(func() {
		switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
		default:
			active.enabled = true
		}
		active.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return active
}

func sanitizeKVs(kv []interface{}) []interface{} {
	r := currentRedactor()
	if len(kv) == 0 || !r.enabled {
		return kv
	}
	return r.apply(kv)
}

func (r redactor) apply(kv []interface{}) []interface{} {
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		name := stringify(kv[i])
		out = append(out, name, r.value(strings.ToLower(strings.TrimSpace(name)), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func (r redactor) value(key string, val interface{}) interface{} {
	switch {
	case key == "":
		return val
	case containsAny(key, secretKeyFragments):
		return "[REDACTED]"
	case containsAny(key, callerKeyFragments):
		return r.hash(stringify(val))
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = r.value(strings.ToLower(strings.TrimSpace(k)), inner)
		}
		return out
	case string:
		if isCredential(v) {
			return "[REDACTED]"
		}
		if len(v) > maxLoggedValueLen {
			return v[:maxLoggedValueLen] + "...(truncated)"
		}
		return v
	default:
		return val
	}
}

func (r redactor) hash(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func containsAny(s string, frags []string) bool {
	for _, f := range frags {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// isCredential spots bearer headers and OpenAI-style keys passed under innocent keys.
func isCredential(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(strings.ToLower(s), "bearer ") || (strings.HasPrefix(s, "sk-") && len(s) > 20)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
