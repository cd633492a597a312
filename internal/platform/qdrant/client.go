package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/yungbote/voicewatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

const (
	maxErrorBodyBytes    = 1024
	maxResponseBodyBytes = 8 << 20
	apiKeyHeader         = "api-key"
)

// Client is a thin REST client bound to a single Qdrant collection.
type Client struct {
	log     *logger.Logger
	cfg     Config
	baseURL string
	http    *http.Client
}

// Point is one (id, vector, payload) record. Payload is encoded as-is.
type Point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload any       `json:"payload"`
}

// ScoredPoint is a search hit with its raw payload left for the caller to decode.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload json.RawMessage
}

type CollectionInfo struct {
	Status              string
	PointsCount         int64
	IndexedVectorsCount int64
	SegmentsCount       int64
	VectorSize          int
	Distance            string
}

type qdrantEnvelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

type qdrantSearchResultItem struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload json.RawMessage `json:"payload"`
}

type qdrantCollectionResult struct {
	Status              string `json:"status"`
	PointsCount         *int64 `json:"points_count"`
	IndexedVectorsCount *int64 `json:"indexed_vectors_count"`
	SegmentsCount       *int64 `json:"segments_count"`
	Config              struct {
		Params struct {
			Vectors struct {
				Size     int    `json:"size"`
				Distance string `json:"distance"`
			} `json:"vectors"`
		} `json:"params"`
	} `json:"config"`
}

// NewClient validates cfg and builds a client. No network call is made.
func NewClient(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg = withDefaults(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Client{
		log:     log.With("service", "QdrantClient", "collection", cfg.Collection),
		cfg:     cfg,
		baseURL: cfg.URL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

func (c *Client) Collection() string { return c.cfg.Collection }
func (c *Client) VectorDim() int     { return c.cfg.VectorDim }

// Ready hits /readyz.
func (c *Client) Ready(ctx context.Context) error {
	const op = "ready"
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodGet, c.baseURL+"/readyz", nil)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "build ready request failed", err)
	}
	c.setHeaders(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant ready check failed", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &OperationError{
			Code:       OperationErrorRequestFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("qdrant ready check returned status=%d", resp.StatusCode),
		}
	}
	return nil
}

func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	var result struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	}
	if err := c.doJSON(ctx, "list_collections", http.MethodGet, "/collections", nil, &result); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(result.Collections))
	for _, col := range result.Collections {
		out = append(out, col.Name)
	}
	return out, nil
}

func (c *Client) CreateCollection(ctx context.Context) error {
	req := map[string]any{
		"vectors": map[string]any{
			"size":     c.cfg.VectorDim,
			"distance": c.cfg.Distance,
		},
	}
	return c.doJSON(ctx, "create_collection", http.MethodPut, c.collectionPath(""), req, nil)
}

// EnsureCollection creates the collection when it is absent and otherwise checks that its
// vector size matches the configured dimension. It reports whether a collection was created.
func (c *Client) EnsureCollection(ctx context.Context) (bool, error) {
	const op = "ensure_collection"
	names, err := c.ListCollections(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name != c.cfg.Collection {
			continue
		}
		info, err := c.CollectionInfo(ctx)
		if err != nil {
			return false, err
		}
		if info.VectorSize != 0 && info.VectorSize != c.cfg.VectorDim {
			return false, &OperationError{
				Code:      OperationErrorSchemaMismatch,
				Operation: op,
				Message: fmt.Sprintf(
					"collection %q vector size mismatch: expected=%d actual=%d",
					c.cfg.Collection, c.cfg.VectorDim, info.VectorSize,
				),
			}
		}
		return false, nil
	}

	if err := c.CreateCollection(ctx); err != nil {
		// Another process may have created it between list and create.
		var oe *OperationError
		if errors.As(err, &oe) && isAlreadyExists(oe) {
			return false, nil
		}
		return false, err
	}
	c.log.Info("Qdrant collection created", "vector_dim", c.cfg.VectorDim, "distance", c.cfg.Distance)
	return true, nil
}

func (c *Client) CollectionInfo(ctx context.Context) (CollectionInfo, error) {
	var result qdrantCollectionResult
	if err := c.doJSON(ctx, "collection_info", http.MethodGet, c.collectionPath(""), nil, &result); err != nil {
		return CollectionInfo{}, err
	}
	return CollectionInfo{
		Status:              result.Status,
		PointsCount:         derefInt64(result.PointsCount),
		IndexedVectorsCount: derefInt64(result.IndexedVectorsCount),
		SegmentsCount:       derefInt64(result.SegmentsCount),
		VectorSize:          result.Config.Params.Vectors.Size,
		Distance:            result.Config.Params.Vectors.Distance,
	}, nil
}

// Upsert writes points and waits for the write to be applied.
func (c *Client) Upsert(ctx context.Context, points []Point) error {
	const op = "upsert"
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if strings.TrimSpace(p.ID) == "" {
			return opErr(op, OperationErrorValidation, "point id is required", nil)
		}
		if len(p.Vector) != c.cfg.VectorDim {
			return opErr(op, OperationErrorValidation, fmt.Sprintf(
				"point %q dimension mismatch: expected=%d got=%d", p.ID, c.cfg.VectorDim, len(p.Vector),
			), nil)
		}
	}
	req := map[string]any{"points": points}
	return c.doJSON(ctx, op, http.MethodPut, c.collectionPath("/points?wait=true"), req, nil)
}

// Search returns up to limit nearest points, best first, with payloads.
func (c *Client) Search(ctx context.Context, vector []float32, limit int, filter *Filter) ([]ScoredPoint, error) {
	const op = "search"
	if len(vector) != c.cfg.VectorDim {
		return nil, opErr(op, OperationErrorValidation, fmt.Sprintf(
			"query vector dimension mismatch: expected=%d got=%d", c.cfg.VectorDim, len(vector),
		), nil)
	}
	if limit <= 0 {
		return nil, opErr(op, OperationErrorValidation, "limit must be positive", nil)
	}
	if err := filter.validate(); err != nil {
		return nil, opErr(op, OperationErrorValidation, "invalid filter", err)
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if !filter.IsEmpty() {
		req["filter"] = filter
	}
	var raw []qdrantSearchResultItem
	if err := c.doJSON(ctx, op, http.MethodPost, c.collectionPath("/points/search"), req, &raw); err != nil {
		return nil, err
	}
	out := make([]ScoredPoint, 0, len(raw))
	for _, item := range raw {
		out = append(out, ScoredPoint{
			ID:      decodePointID(item.ID),
			Score:   item.Score,
			Payload: item.Payload,
		})
	}
	return out, nil
}

// DeleteByFilter removes every point matching filter and waits for completion.
func (c *Client) DeleteByFilter(ctx context.Context, filter *Filter) error {
	const op = "delete"
	if filter.IsEmpty() {
		return opErr(op, OperationErrorValidation, "refusing to delete with an empty filter", nil)
	}
	if err := filter.validate(); err != nil {
		return opErr(op, OperationErrorValidation, "invalid filter", err)
	}
	req := map[string]any{"filter": filter}
	return c.doJSON(ctx, op, http.MethodPost, c.collectionPath("/points/delete?wait=true"), req, nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return opErr(op, OperationErrorEncodeFailed, "encode request failed", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, c.baseURL+path, body)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "build request failed", err)
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "qdrant request failed", err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if readErr != nil {
		return opErr(op, OperationErrorDecodeFailed, "read response failed", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &OperationError{
			Code:       OperationErrorRequestFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("qdrant http status=%d body=%q", resp.StatusCode, truncateBody(raw)),
		}
	}

	var envelope qdrantEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode qdrant envelope failed", err)
	}
	if statusErr := parseEnvelopeStatus(envelope.Status); statusErr != "" {
		return &OperationError{
			Code:       OperationErrorRequestFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    statusErr,
		}
	}
	if out == nil || len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode qdrant result failed", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.cfg.APIKey != "" {
		req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) collectionPath(suffix string) string {
	return "/collections/" + c.cfg.Collection + suffix
}

func classifyHTTPCallError(op, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return opErr(op, OperationErrorTimeout, message, err)
	}
	return opErr(op, OperationErrorTransportFailed, message, err)
}

func parseEnvelopeStatus(raw json.RawMessage) string {
	status := strings.TrimSpace(string(raw))
	if status == "" || status == "null" {
		return ""
	}
	var statusString string
	if err := json.Unmarshal(raw, &statusString); err == nil {
		if strings.EqualFold(statusString, "ok") || strings.EqualFold(statusString, "acknowledged") {
			return ""
		}
		return fmt.Sprintf("qdrant status=%q", statusString)
	}
	var statusObject struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &statusObject); err == nil && strings.TrimSpace(statusObject.Error) != "" {
		return strings.TrimSpace(statusObject.Error)
	}
	return fmt.Sprintf("qdrant status=%s", status)
}

func isAlreadyExists(e *OperationError) bool {
	if e.StatusCode == http.StatusConflict {
		return true
	}
	return e.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(e.Message), "already exists")
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}

func decodePointID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var idString string
	if err := json.Unmarshal(raw, &idString); err == nil {
		return strings.TrimSpace(idString)
	}
	var idNumber uint64
	if err := json.Unmarshal(raw, &idNumber); err == nil {
		return fmt.Sprintf("%d", idNumber)
	}
	return strings.TrimSpace(string(raw))
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
