package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/voicewatch-backend/internal/observability"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

const DefaultBatchSize = 100

// Provider turns a batch of texts into vectors, one per input, in input order.
type Provider interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// EmbeddingServiceError wraps any failure of the embedding provider, including
// responses with the wrong count or dimension.
type EmbeddingServiceError struct {
	Op     string
	Offset int
	Count  int
	Err    error
}

func (e *EmbeddingServiceError) Error() string {
	if e == nil {
		return "embedding service error"
	}
	if e.Count > 0 {
		return fmt.Sprintf("embedding service error (%s, inputs %d..%d): %v", e.Op, e.Offset, e.Offset+e.Count-1, e.Err)
	}
	return fmt.Sprintf("embedding service error (%s): %v", e.Op, e.Err)
}

func (e *EmbeddingServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type Options struct {
	BatchSize int
	// Dimension, when positive, is enforced on every returned vector.
	Dimension int
}

type Embedder struct {
	log       *logger.Logger
	provider  Provider
	batchSize int
	dimension int
}

func New(log *logger.Logger, provider Provider, opts Options) (*Embedder, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if provider == nil {
		return nil, fmt.Errorf("embedding provider required")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Embedder{
		log:       log.With("service", "Embedder"),
		provider:  provider,
		batchSize: opts.BatchSize,
		dimension: opts.Dimension,
	}, nil
}

func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns the vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &EmbeddingServiceError{Op: "embed", Err: fmt.Errorf("empty input text")}
	}
	vecs, err := e.call(ctx, "embed", 0, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in sequential sub-batches and reassembles them in input order.
// A failure in any sub-batch fails the whole call.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.call(ctx, "embed_batch", start, texts[start:end])
		if err != nil {
			e.log.Warn("embedding batch failed", "offset", start, "count", end-start, "total", len(texts), "error", err)
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *Embedder) call(ctx context.Context, op string, offset int, batch []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, &EmbeddingServiceError{Op: op, Offset: offset, Count: len(batch), Err: err}
	}
	vecs, err := e.provider.Embed(ctx, batch)
	if err == nil {
		err = e.check(batch, vecs)
	}
	observability.Current().ObserveEmbedding(len(batch), err)
	if err != nil {
		return nil, &EmbeddingServiceError{Op: op, Offset: offset, Count: len(batch), Err: err}
	}
	return vecs, nil
}

func (e *Embedder) check(batch []string, vecs [][]float32) error {
	if len(vecs) != len(batch) {
		return fmt.Errorf("provider returned %d vectors for %d inputs", len(vecs), len(batch))
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return fmt.Errorf("provider returned an empty vector at position %d", i)
		}
		if e.dimension > 0 && len(v) != e.dimension {
			return fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), e.dimension)
		}
	}
	return nil
}
