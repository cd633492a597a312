package index

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
	"github.com/yungbote/voicewatch-backend/internal/observability"
)

// Instrumented records a span and prometheus timing around every call to next.
type Instrumented struct {
	next    VectorIndex
	metrics *observability.Metrics
}

func NewInstrumented(next VectorIndex, metrics *observability.Metrics) VectorIndex {
	if next == nil {
		return nil
	}
	return &Instrumented{next: next, metrics: metrics}
}

func (i *Instrumented) observe(ctx context.Context, op string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := observability.StartSpan(ctx, "vector_index."+op, attrs...)
	defer span.End()
	start := time.Now()
	err := fn(ctx)
	i.metrics.ObserveIndexOp(op, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (i *Instrumented) EnsureCollection(ctx context.Context) error {
	return i.observe(ctx, "ensure_collection", i.next.EnsureCollection)
}

func (i *Instrumented) Upsert(ctx context.Context, points []Point) error {
	return i.observe(ctx, "upsert", func(ctx context.Context) error {
		return i.next.Upsert(ctx, points)
	}, attribute.Int("points", len(points)))
}

func (i *Instrumented) Search(ctx context.Context, vector []float32, limit int) ([]knowledge.SearchResult, error) {
	var out []knowledge.SearchResult
	err := i.observe(ctx, "search", func(ctx context.Context) error {
		var err error
		out, err = i.next.Search(ctx, vector, limit)
		return err
	}, attribute.Int("limit", limit))
	return out, err
}

func (i *Instrumented) Stats(ctx context.Context) (knowledge.IndexStats, error) {
	var out knowledge.IndexStats
	err := i.observe(ctx, "stats", func(ctx context.Context) error {
		var err error
		out, err = i.next.Stats(ctx)
		return err
	})
	return out, err
}

func (i *Instrumented) DeleteByDocumentID(ctx context.Context, documentID string) error {
	return i.observe(ctx, "delete", func(ctx context.Context) error {
		return i.next.DeleteByDocumentID(ctx, documentID)
	}, attribute.String("document_id", documentID))
}
