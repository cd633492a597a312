package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
)

// Memory is an in-process VectorIndex using brute-force cosine similarity.
// It backs VECTOR_BACKEND=memory and the service tests.
type Memory struct {
	mu     sync.RWMutex
	dim    int
	order  []string
	points map[string]Point
}

func NewMemory(dim int) *Memory {
	return &Memory{dim: dim, points: map[string]Point{}}
}

func (m *Memory) EnsureCollection(ctx context.Context) error { return nil }

func (m *Memory) Upsert(ctx context.Context, points []Point) error {
	if err := validatePoints(points, m.dim); err != nil {
		return &IndexWriteError{Op: "upsert", Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		if _, exists := m.points[p.ID]; !exists {
			m.order = append(m.order, p.ID)
		}
		vec := make([]float32, len(p.Vector))
		copy(vec, p.Vector)
		p.Vector = vec
		m.points[p.ID] = p
	}
	return nil
}

func (m *Memory) Search(ctx context.Context, vector []float32, limit int) ([]knowledge.SearchResult, error) {
	if limit <= 0 {
		return nil, &IndexReadError{Op: "search", Err: fmt.Errorf("limit must be positive")}
	}
	if m.dim > 0 && len(vector) != m.dim {
		return nil, &IndexReadError{Op: "search", Err: fmt.Errorf("query dimension %d, expected %d", len(vector), m.dim)}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		id    string
		score float64
	}
	all := make([]scored, 0, len(m.order))
	for _, id := range m.order {
		all = append(all, scored{id: id, score: cosine(vector, m.points[id].Vector)})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]knowledge.SearchResult, 0, len(all))
	for _, s := range all {
		out = append(out, m.points[s.id].Payload.Result(s.id, s.score))
	}
	return out, nil
}

func (m *Memory) Stats(ctx context.Context) (knowledge.IndexStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := int64(len(m.points))
	segments := int64(0)
	if n > 0 {
		segments = 1
	}
	return knowledge.IndexStats{PointsCount: n, IndexedVectorsCount: n, SegmentsCount: segments}, nil
}

func (m *Memory) DeleteByDocumentID(ctx context.Context, documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return &IndexWriteError{Op: "delete", Err: fmt.Errorf("documentId is required")}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.order[:0]
	for _, id := range m.order {
		if m.points[id].Payload.DocumentID == documentID {
			delete(m.points, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
