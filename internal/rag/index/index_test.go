package index

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
	"github.com/yungbote/voicewatch-backend/internal/observability"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	"github.com/yungbote/voicewatch-backend/internal/platform/qdrant"
)

func point(id, docID string, idx, total int, vec ...float32) Point {
	return Point{
		ID:     id,
		Vector: vec,
		Payload: Payload{
			Content:     "content " + id,
			Source:      "guide.pdf",
			DocumentID:  docID,
			ChunkIndex:  idx,
			TotalChunks: total,
		},
	}
}

func TestPayloadValidate(t *testing.T) {
	ok := point("a", "doc", 0, 1).Payload
	require.NoError(t, ok.Validate())

	cases := map[string]func(p *Payload){
		"missing source":   func(p *Payload) { p.Source = " " },
		"missing document": func(p *Payload) { p.DocumentID = "" },
		"negative index":   func(p *Payload) { p.ChunkIndex = -1 },
		"total too small":  func(p *Payload) { p.ChunkIndex = 2; p.TotalChunks = 2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := ok
			mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestPointFromChunkCarriesMetadata(t *testing.T) {
	page := 4
	c := knowledge.Chunk{
		ID:      "id-1",
		Content: "Always greet the caller.",
		Metadata: knowledge.ChunkMetadata{
			Source: "handbook.pdf", DocumentID: "hb", Title: "Handbook",
			PageNumber: &page, ChunkIndex: 1, TotalChunks: 3,
		},
	}
	p := PointFromChunk(c, []float32{1, 2})
	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, "Handbook", p.Payload.Title)
	require.NotNil(t, p.Payload.PageNumber)
	assert.Equal(t, 4, *p.Payload.PageNumber)

	res := p.Payload.Result(p.ID, 0.5)
	assert.Equal(t, c.Content, res.Content)
	assert.Equal(t, c.Metadata, res.Metadata)
}

func TestMemorySearchOrdersByScore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)
	require.NoError(t, m.Upsert(ctx, []Point{
		point("far", "d1", 0, 3, 0, 1),
		point("near", "d1", 1, 3, 1, 0),
		point("mid", "d1", 2, 3, 1, 1),
	}))

	res, err := m.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "near", res[0].ID)
	assert.Equal(t, "mid", res[1].ID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
	assert.GreaterOrEqual(t, res[0].Score, res[1].Score)
}

func TestMemoryUpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)
	require.NoError(t, m.Upsert(ctx, []Point{point("a", "d1", 0, 1, 1, 0)}))
	p := point("a", "d1", 0, 1, 0, 1)
	p.Payload.Content = "replaced"
	require.NoError(t, m.Upsert(ctx, []Point{p}))

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.PointsCount)

	res, err := m.Search(ctx, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "replaced", res[0].Content)
}

func TestMemoryDeleteByDocumentID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)
	require.NoError(t, m.Upsert(ctx, []Point{
		point("a", "keep", 0, 1, 1, 0),
		point("b", "drop", 0, 2, 0, 1),
		point("c", "drop", 1, 2, 1, 1),
	}))
	require.NoError(t, m.DeleteByDocumentID(ctx, "drop"))

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, knowledge.IndexStats{PointsCount: 1, IndexedVectorsCount: 1, SegmentsCount: 1}, stats)

	var writeErr *IndexWriteError
	assert.ErrorAs(t, m.DeleteByDocumentID(ctx, ""), &writeErr)
}

func TestMemoryRejectsInvalidPoints(t *testing.T) {
	m := NewMemory(3)
	var writeErr *IndexWriteError
	err := m.Upsert(context.Background(), []Point{point("a", "d", 0, 1, 1, 0)})
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "upsert", writeErr.Op)

	err = m.Upsert(context.Background(), []Point{point("a", "", 0, 1, 1, 0, 0)})
	assert.ErrorAs(t, err, &writeErr)

	_, err = m.Search(context.Background(), []float32{1, 0, 0}, 0)
	var readErr *IndexReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestMemoryEmptyStats(t *testing.T) {
	stats, err := NewMemory(2).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, knowledge.IndexStats{}, stats)
}

func TestInstrumentedRecordsOperations(t *testing.T) {
	ctx := context.Background()
	metrics := observability.NewMetrics()
	idx := NewInstrumented(NewMemory(2), metrics)

	require.NoError(t, idx.EnsureCollection(ctx))
	require.NoError(t, idx.Upsert(ctx, []Point{point("a", "d", 0, 1, 1, 0)}))
	res, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, res, 1)
	_, err = idx.Search(ctx, []float32{1, 0}, 0)
	assert.Error(t, err)

	body := scrape(t, metrics)
	assert.Contains(t, body, `vw_vector_index_operations_total{operation="upsert",status="ok"} 1`)
	assert.Contains(t, body, `vw_vector_index_operations_total{operation="search",status="ok"} 1`)
	assert.Contains(t, body, `vw_vector_index_operations_total{operation="search",status="error"} 1`)
}

func TestInstrumentedNilMetrics(t *testing.T) {
	idx := NewInstrumented(NewMemory(2), nil)
	_, err := idx.Stats(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, NewInstrumented(nil, nil))
}

func TestQdrantAdapterSearchDecodesPayload(t *testing.T) {
	q := newQdrantAdapter(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/collections/kb/points/search", r.URL.Path)
		return jsonResponse(http.StatusOK, `{"status":"ok","time":0.001,"result":[
			{"id":"p1","score":0.91,"payload":{"content":"Verify identity first.","source":"policy.md","documentId":"pol","title":"Policy","chunkIndex":0,"totalChunks":2}},
			{"id":7,"score":0.42,"payload":{"content":"Escalate on request.","source":"policy.md","documentId":"pol","pageNumber":3,"chunkIndex":1,"totalChunks":2}}
		]}`), nil
	})

	res, err := q.Search(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "p1", res[0].ID)
	assert.Equal(t, "Policy", res[0].Metadata.Title)
	assert.Equal(t, "7", res[1].ID)
	require.NotNil(t, res[1].Metadata.PageNumber)
	assert.Equal(t, 3, *res[1].Metadata.PageNumber)
	assert.Equal(t, 2, res[1].Metadata.TotalChunks)
}

func TestQdrantAdapterUpsertSendsTypedPayload(t *testing.T) {
	q := newQdrantAdapter(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPut, r.Method)
		raw, _ := io.ReadAll(r.Body)
		var body struct {
			Points []struct {
				ID      string         `json:"id"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		require.Len(t, body.Points, 1)
		p := body.Points[0].Payload
		assert.Equal(t, "pol", p["documentId"])
		assert.Equal(t, float64(0), p["chunkIndex"])
		assert.NotContains(t, p, "title")
		return jsonResponse(http.StatusOK, `{"status":"ok","time":0,"result":{"operation_id":1,"status":"completed"}}`), nil
	})

	pt := point("11111111-1111-1111-1111-111111111111", "pol", 0, 1, 1, 0, 0)
	require.NoError(t, q.Upsert(context.Background(), []Point{pt}))
}

func TestQdrantAdapterRejectsInvalidPayloadBeforeRequest(t *testing.T) {
	q := newQdrantAdapter(t, func(r *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request %s", r.URL.Path)
		return nil, nil
	})
	err := q.Upsert(context.Background(), []Point{point("a", "", 0, 1, 1, 0, 0)})
	var writeErr *IndexWriteError
	assert.ErrorAs(t, err, &writeErr)
}

func TestQdrantAdapterDeleteFiltersByDocument(t *testing.T) {
	q := newQdrantAdapter(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/collections/kb/points/delete", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"filter":{"must":[{"key":"documentId","match":{"value":"pol"}}]}}`, string(raw))
		return jsonResponse(http.StatusOK, `{"status":"ok","time":0,"result":{"operation_id":2,"status":"completed"}}`), nil
	})
	require.NoError(t, q.DeleteByDocumentID(context.Background(), "pol"))
}

func TestQdrantAdapterWrapsReadFailures(t *testing.T) {
	q := newQdrantAdapter(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, `{"status":{"error":"overloaded"}}`), nil
	})
	_, err := q.Stats(context.Background())
	var readErr *IndexReadError
	require.ErrorAs(t, err, &readErr)
	var opErr *qdrant.OperationError
	assert.True(t, errors.As(err, &opErr))
}

func newQdrantAdapter(t *testing.T, fn func(*http.Request) (*http.Response, error)) *Qdrant {
	t.Helper()
	client, err := qdrant.NewClient(logger.Nop(), qdrant.Config{
		URL:        "http://qdrant.local",
		APIKey:     "test-key",
		Collection: "kb",
		VectorDim:  3,
	})
	require.NoError(t, err)
	client.WithHTTPClient(&http.Client{Transport: roundTripFunc(fn)})
	q, err := NewQdrant(logger.Nop(), client)
	require.NoError(t, err)
	return q
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
