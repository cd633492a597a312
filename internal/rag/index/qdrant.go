package index

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	"github.com/yungbote/voicewatch-backend/internal/platform/qdrant"
)

// Qdrant adapts the REST client to VectorIndex with a typed payload.
type Qdrant struct {
	log    *logger.Logger
	client *qdrant.Client
}

func NewQdrant(log *logger.Logger, client *qdrant.Client) (*Qdrant, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if client == nil {
		return nil, fmt.Errorf("qdrant client required")
	}
	return &Qdrant{log: log.With("service", "QdrantIndex"), client: client}, nil
}

func (q *Qdrant) EnsureCollection(ctx context.Context) error {
	if _, err := q.client.EnsureCollection(ctx); err != nil {
		return &IndexWriteError{Op: "ensure_collection", Err: err}
	}
	return nil
}

func (q *Qdrant) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	if err := validatePoints(points, q.client.VectorDim()); err != nil {
		return &IndexWriteError{Op: "upsert", Err: err}
	}
	out := make([]qdrant.Point, 0, len(points))
	for _, p := range points {
		out = append(out, qdrant.Point{ID: p.ID, Vector: p.Vector, Payload: p.Payload})
	}
	if err := q.client.Upsert(ctx, out); err != nil {
		return &IndexWriteError{Op: "upsert", Err: err}
	}
	return nil
}

func (q *Qdrant) Search(ctx context.Context, vector []float32, limit int) ([]knowledge.SearchResult, error) {
	hits, err := q.client.Search(ctx, vector, limit, nil)
	if err != nil {
		return nil, &IndexReadError{Op: "search", Err: err}
	}
	results := make([]knowledge.SearchResult, 0, len(hits))
	for _, h := range hits {
		var p Payload
		if len(h.Payload) > 0 {
			if err := json.Unmarshal(h.Payload, &p); err != nil {
				return nil, &IndexReadError{Op: "search", Err: fmt.Errorf("decode payload of point %s: %w", h.ID, err)}
			}
		}
		results = append(results, p.Result(h.ID, h.Score))
	}
	return results, nil
}

func (q *Qdrant) Stats(ctx context.Context) (knowledge.IndexStats, error) {
	info, err := q.client.CollectionInfo(ctx)
	if err != nil {
		return knowledge.IndexStats{}, &IndexReadError{Op: "stats", Err: err}
	}
	return knowledge.IndexStats{
		PointsCount:         info.PointsCount,
		IndexedVectorsCount: info.IndexedVectorsCount,
		SegmentsCount:       info.SegmentsCount,
	}, nil
}

func (q *Qdrant) DeleteByDocumentID(ctx context.Context, documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return &IndexWriteError{Op: "delete", Err: fmt.Errorf("documentId is required")}
	}
	filter := &qdrant.Filter{Must: []qdrant.Condition{qdrant.MatchValue(PayloadDocumentIDKey, documentID)}}
	if err := q.client.DeleteByFilter(ctx, filter); err != nil {
		return &IndexWriteError{Op: "delete", Err: err}
	}
	q.log.Info("deleted document points", "document_id", documentID)
	return nil
}
