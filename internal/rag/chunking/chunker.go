package chunking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ErrInvalidOptions is returned when the window could never advance.
var ErrInvalidOptions = errors.New("chunking: invalid options")

// chunkNamespace scopes the UUIDv5 chunk ids so they cannot collide with other v5 ids.
var chunkNamespace = uuid.MustParse("6f1f6c2e-2f4b-5c8e-9a51-0c6b7d1e4a90")

type Options struct {
	ChunkSize    int
	ChunkOverlap int
}

func DefaultOptions() Options {
	return Options{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap}
}

func (o Options) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidOptions, o.ChunkSize)
	}
	if o.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrInvalidOptions, o.ChunkOverlap)
	}
	if o.ChunkOverlap >= o.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", ErrInvalidOptions, o.ChunkOverlap, o.ChunkSize)
	}
	return nil
}

// ChunkText splits text into windows of at most size runes. When more text remains after a
// window, the cut moves back to the last '.' or '\n' if that lies past half the window;
// otherwise the full window is cut and the next one starts overlap runes earlier.
// Chunks are trimmed and empty ones dropped.
func ChunkText(text string, size, overlap int) ([]string, error) {
	if err := (Options{ChunkSize: size, ChunkOverlap: overlap}).Validate(); err != nil {
		return nil, err
	}
	runes := []rune(text)
	n := len(runes)
	out := []string{}
	half := float64(size) * 0.5

	for start := 0; start < n; {
		end := start + size
		if end > n {
			end = n
		}
		window := runes[start:end]

		if end < n {
			bp := lastBreak(window)
			if bp >= 0 && float64(bp) > half {
				window = window[:bp+1]
				start += bp + 1
			} else {
				start = end - overlap
			}
		} else {
			start = end
		}

		if piece := strings.TrimSpace(string(window)); piece != "" {
			out = append(out, piece)
		}
	}
	return out, nil
}

func lastBreak(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}

// ChunkID is stable for a (documentId, chunkIndex) pair so re-ingesting a document
// overwrites its points.
func ChunkID(documentID string, chunkIndex int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(documentID+"|"+strconv.Itoa(chunkIndex))).String()
}

// ProcessDocument chunks one document and attaches metadata and ids.
func ProcessDocument(doc knowledge.Document, opts Options) ([]knowledge.Chunk, error) {
	pieces, err := ChunkText(doc.Content, opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	chunks := make([]knowledge.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, knowledge.Chunk{
			ID:      ChunkID(doc.DocumentID, i),
			Content: piece,
			Metadata: knowledge.ChunkMetadata{
				Source:      doc.Source,
				DocumentID:  doc.DocumentID,
				Title:       doc.Title,
				PageNumber:  doc.PageNumber,
				ChunkIndex:  i,
				TotalChunks: len(pieces),
			},
		})
	}
	return chunks, nil
}

// ProcessDocuments concatenates ProcessDocument over docs in input order.
func ProcessDocuments(docs []knowledge.Document, opts Options) ([]knowledge.Chunk, error) {
	var all []knowledge.Chunk
	for _, doc := range docs {
		chunks, err := ProcessDocument(doc, opts)
		if err != nil {
			return nil, fmt.Errorf("chunk document %q: %w", doc.DocumentID, err)
		}
		all = append(all, chunks...)
	}
	return all, nil
}
