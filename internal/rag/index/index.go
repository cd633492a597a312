package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
)

// VectorIndex is the knowledge base's view of the vector database collection.
type VectorIndex interface {
	// EnsureCollection is idempotent and safe to call before every write.
	EnsureCollection(ctx context.Context) error
	// Upsert replaces points with matching ids and returns once the write is applied.
	Upsert(ctx context.Context, points []Point) error
	// Search returns up to limit results ordered by descending score.
	Search(ctx context.Context, vector []float32, limit int) ([]knowledge.SearchResult, error)
	Stats(ctx context.Context) (knowledge.IndexStats, error)
	DeleteByDocumentID(ctx context.Context, documentID string) error
}

type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Payload is the fixed record stored with every point.
type Payload struct {
	Content     string `json:"content"`
	Source      string `json:"source"`
	DocumentID  string `json:"documentId"`
	Title       string `json:"title,omitempty"`
	PageNumber  *int   `json:"pageNumber,omitempty"`
	ChunkIndex  int    `json:"chunkIndex"`
	TotalChunks int    `json:"totalChunks"`
}

// PayloadDocumentIDKey is the payload field deletes filter on.
const PayloadDocumentIDKey = "documentId"

func PointFromChunk(c knowledge.Chunk, vector []float32) Point {
	return Point{
		ID:     c.ID,
		Vector: vector,
		Payload: Payload{
			Content:     c.Content,
			Source:      c.Metadata.Source,
			DocumentID:  c.Metadata.DocumentID,
			Title:       c.Metadata.Title,
			PageNumber:  c.Metadata.PageNumber,
			ChunkIndex:  c.Metadata.ChunkIndex,
			TotalChunks: c.Metadata.TotalChunks,
		},
	}
}

func (p Payload) Validate() error {
	switch {
	case strings.TrimSpace(p.Source) == "":
		return fmt.Errorf("payload source is required")
	case strings.TrimSpace(p.DocumentID) == "":
		return fmt.Errorf("payload documentId is required")
	case p.ChunkIndex < 0:
		return fmt.Errorf("payload chunkIndex must not be negative")
	case p.TotalChunks <= p.ChunkIndex:
		return fmt.Errorf("payload totalChunks %d must exceed chunkIndex %d", p.TotalChunks, p.ChunkIndex)
	}
	return nil
}

func (p Payload) Result(id string, score float64) knowledge.SearchResult {
	return knowledge.SearchResult{
		ID:      id,
		Score:   score,
		Content: p.Content,
		Metadata: knowledge.ChunkMetadata{
			Source:      p.Source,
			DocumentID:  p.DocumentID,
			Title:       p.Title,
			PageNumber:  p.PageNumber,
			ChunkIndex:  p.ChunkIndex,
			TotalChunks: p.TotalChunks,
		},
	}
}

func validatePoints(points []Point, dim int) error {
	for i, p := range points {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("point %d has no id", i)
		}
		if dim > 0 && len(p.Vector) != dim {
			return fmt.Errorf("point %s has dimension %d, expected %d", p.ID, len(p.Vector), dim)
		}
		if err := p.Payload.Validate(); err != nil {
			return fmt.Errorf("point %s: %w", p.ID, err)
		}
	}
	return nil
}
