package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/yungbote/voicewatch-backend/internal/observability"
	"github.com/yungbote/voicewatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

const (
	DefaultBaseURL    = "https://api.openai.com"
	DefaultEmbedModel = "text-embedding-3-small"
	DefaultChatModel  = "gpt-4"
	DefaultTimeout    = 60 * time.Second

	maxResponseBodyBytes = 32 << 20
	maxErrorBodyBytes    = 2048
)

type Config struct {
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
	Timeout    time.Duration
	// MaxRetries is the number of extra attempts on 429/5xx/transport errors.
	MaxRetries int
	// RetryBase is the first backoff step.
	RetryBase time.Duration
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func System(content string) Message    { return Message{Role: "system", Content: content} }
func User(content string) Message      { return Message{Role: "user", Content: content} }
func Assistant(content string) Message { return Message{Role: "assistant", Content: content} }

type ChatOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Client is the OpenAI API surface the backend depends on.
type Client interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)

	// Plain text chat completion.
	GenerateText(ctx context.Context, messages []Message, opts ChatOptions) (string, error)

	// Chat completion in json_object mode, decoded into a map.
	GenerateJSON(ctx context.Context, messages []Message, opts ChatOptions) (map[string]any, error)

	EmbedModel() string
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	embedModel string
	chatModel  string
	httpClient *http.Client
	maxRetries int
	retryBase  time.Duration
}

// HTTPError is a non-2xx response from the API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

// Retryable reports rate limiting and server-side failures.
func (e *HTTPError) Retryable() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

var ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY")

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	embed := strings.TrimSpace(cfg.EmbedModel)
	if embed == "" {
		embed = DefaultEmbedModel
	}
	chat := strings.TrimSpace(cfg.ChatModel)
	if chat == "" {
		chat = DefaultChatModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	base := cfg.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return &client{
		log:        log.With("client", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		embedModel: embed,
		chatModel:  chat,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: retries,
		retryBase:  base,
	}, nil
}

func (c *client) EmbedModel() string { return c.embedModel }

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw))}
	}
	return resp, raw, nil
}

// do sends one request with bounded fibonacci backoff and decodes the JSON body into out.
func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	ctx = ctxutil.Default(ctx)
	start := time.Now()
	model := extractModelFromRequest(body)

	backoff := retry.WithCappedDuration(10*time.Second, retry.NewFibonacci(c.retryBase))
	backoff = retry.WithJitterPercent(10, backoff)
	backoff = retry.WithMaxRetries(uint64(c.maxRetries), backoff)

	attempt := 0
	var lastResp *http.Response
	var raw []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		resp, b, err := c.doOnce(ctx, method, path, body)
		lastResp = resp
		if err == nil {
			raw = b
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if attempt <= c.maxRetries {
			c.log.Warn("OpenAI request retrying",
				"path", path,
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"error", err.Error(),
			)
		}
		return retry.RetryableError(err)
	})

	if metrics := observability.Current(); metrics != nil {
		in, outTokens := 0, 0
		if err == nil {
			in, outTokens = extractUsageFromRaw(raw)
		}
		metrics.ObserveLLMRequest(model, path, statusFromRespErr(lastResp, err), time.Since(start), in, outTokens)
	}
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if uErr := json.Unmarshal(raw, out); uErr != nil {
		return fmt.Errorf("openai decode error: %w", uErr)
	}
	return nil
}

// -------------------- Embeddings --------------------

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns one vector per input, in input order.
func (c *client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}

	clean := make([]string, len(inputs))
	for i := range inputs {
		s := strings.TrimSpace(inputs[i])
		if s == "" {
			s = " "
		}
		clean[i] = s
	}

	var resp embeddingsResponse
	if err := c.do(ctx, http.MethodPost, "/v1/embeddings", embeddingsRequest{Model: c.embedModel, Input: clean}, &resp); err != nil {
		return nil, err
	}

	out := make([][]float32, len(clean))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			continue
		}
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		out[d.Index] = vec
	}
	if hasMissingEmbeddings(out) {
		return nil, fmt.Errorf("openai embeddings incomplete: requested=%d returned=%d", len(clean), len(resp.Data))
	}
	return out, nil
}

func hasMissingEmbeddings(v [][]float32) bool {
	for _, e := range v {
		if len(e) == 0 {
			return true
		}
	}
	return false
}

// -------------------- Chat completions --------------------

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *client) GenerateText(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	return c.complete(ctx, messages, opts, nil)
}

func (c *client) GenerateJSON(ctx context.Context, messages []Message, opts ChatOptions) (map[string]any, error) {
	text, err := c.complete(ctx, messages, opts, &responseFormat{Type: "json_object"})
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("openai json output decode: %w", err)
	}
	return obj, nil
}

func (c *client) complete(ctx context.Context, messages []Message, opts ChatOptions, format *responseFormat) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("at least one message is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = c.chatModel
	}
	req := chatRequest{
		Model:          model,
		Messages:       messages,
		Temperature:    opts.Temperature,
		MaxTokens:      opts.MaxTokens,
		ResponseFormat: format,
	}
	var resp chatResponse
	if err := c.do(ctx, http.MethodPost, "/v1/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Temperature is a helper for ChatOptions literals.
func Temperature(v float64) *float64 { return &v }

// -------------------- helpers --------------------

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

func extractUsageFromRaw(raw []byte) (int, int) {
	var payload struct {
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &payload) != nil {
		return 0, 0
	}
	return payload.Usage.PromptTokens, payload.Usage.CompletionTokens
}

func extractModelFromRequest(body any) string {
	switch v := body.(type) {
	case embeddingsRequest:
		return v.Model
	case chatRequest:
		return v.Model
	}
	return ""
}

func statusFromRespErr(resp *http.Response, err error) string {
	var httpErr *HTTPError
	if err != nil && errors.As(err, &httpErr) {
		return strconv.Itoa(httpErr.StatusCode)
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if err != nil {
		return "error"
	}
	if resp == nil {
		return "unknown"
	}
	return strconv.Itoa(resp.StatusCode)
}

func truncate(s string) string {
	if len(s) <= maxErrorBodyBytes {
		return s
	}
	return s[:maxErrorBodyBytes] + "..."
}
