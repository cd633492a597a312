package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
	"github.com/yungbote/voicewatch-backend/internal/observability"
	"github.com/yungbote/voicewatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	"github.com/yungbote/voicewatch-backend/internal/rag/chunking"
	"github.com/yungbote/voicewatch-backend/internal/rag/index"
)

const DefaultSearchLimit = 5

// NoResultsMessage is what FormatResults renders for an empty result set.
const NoResultsMessage = "No relevant information found in the knowledge base."

// ValidationError is a caller error found before any chunking, embedding or index work.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "invalid input"
	}
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Embedder is satisfied by *embedding.Embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Locker serialises work per key. *redislock.Locker satisfies it.
type Locker interface {
	Acquire(ctx context.Context, name string) (func(), error)
}

type IngestResult struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

type Service interface {
	Init(ctx context.Context) error
	IngestDocuments(ctx context.Context, docs []knowledge.Document) (IngestResult, error)
	SearchKnowledgeBase(ctx context.Context, query string, limit int) ([]knowledge.SearchResult, error)
	Stats(ctx context.Context) (knowledge.IndexStats, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

type Options struct {
	Chunking     chunking.Options
	DefaultLimit int
	// Locker is optional; nil means concurrent ingests of one document are not serialised.
	Locker Locker
}

type service struct {
	log      *logger.Logger
	embedder Embedder
	index    index.VectorIndex
	opts     Options
}

func NewService(log *logger.Logger, embedder Embedder, idx index.VectorIndex, opts Options) (Service, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if idx == nil {
		return nil, fmt.Errorf("vector index required")
	}
	if opts.Chunking == (chunking.Options{}) {
		opts.Chunking = chunking.DefaultOptions()
	}
	if err := opts.Chunking.Validate(); err != nil {
		return nil, err
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultSearchLimit
	}
	return &service{
		log:      log.With("service", "KnowledgeService"),
		embedder: embedder,
		index:    idx,
		opts:     opts,
	}, nil
}

func (s *service) Init(ctx context.Context) error {
	ctx = ctxutil.Default(ctx)
	if err := s.index.EnsureCollection(ctx); err != nil {
		s.log.Error("knowledge base init failed", append(ctxutil.LogFields(ctx), "error", err)...)
		return err
	}
	s.log.Info("knowledge base ready", ctxutil.LogFields(ctx)...)
	return nil
}

// ValidateDocuments reports the first document missing content, documentId or source.
func ValidateDocuments(docs []knowledge.Document) error {
	if len(docs) == 0 {
		return &ValidationError{Field: "documents", Reason: "at least one document is required"}
	}
	for i, d := range docs {
		switch {
		case strings.TrimSpace(d.Content) == "":
			return &ValidationError{Field: fmt.Sprintf("documents[%d].content", i), Reason: "is required"}
		case strings.TrimSpace(d.DocumentID) == "":
			return &ValidationError{Field: fmt.Sprintf("documents[%d].documentId", i), Reason: "is required"}
		case strings.TrimSpace(d.Source) == "":
			return &ValidationError{Field: fmt.Sprintf("documents[%d].source", i), Reason: "is required"}
		}
	}
	return nil
}

func (s *service) IngestDocuments(ctx context.Context, docs []knowledge.Document) (res IngestResult, err error) {
	ctx = ctxutil.Default(ctx)
	metrics := observability.Current()
	defer func() {
		if err != nil && !IsValidationError(err) {
			metrics.ObserveIngest(len(docs), 0, err)
		}
	}()

	if err := ValidateDocuments(docs); err != nil {
		metrics.IncDataQuality("ingest", "invalid_document")
		return IngestResult{}, err
	}

	release, err := s.lockDocuments(ctx, docs)
	if err != nil {
		return IngestResult{}, err
	}
	defer release()

	chunks, err := chunking.ProcessDocuments(docs, s.opts.Chunking)
	if err != nil {
		return IngestResult{}, err
	}
	if len(chunks) == 0 {
		// Only possible when every document trims to nothing, which validation rejects.
		metrics.IncDataQuality("ingest", "no_chunks")
		return IngestResult{Documents: len(docs)}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		s.log.Error("embedding chunks failed", append(ctxutil.LogFields(ctx), "chunks", len(chunks), "error", err)...)
		return IngestResult{}, err
	}
	if len(vectors) != len(chunks) {
		return IngestResult{}, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := s.index.EnsureCollection(ctx); err != nil {
		return IngestResult{}, err
	}
	points := make([]index.Point, len(chunks))
	for i, c := range chunks {
		points[i] = index.PointFromChunk(c, vectors[i])
	}
	if err := s.index.Upsert(ctx, points); err != nil {
		s.log.Error("upserting chunks failed", append(ctxutil.LogFields(ctx), "points", len(points), "error", err)...)
		return IngestResult{}, err
	}

	metrics.ObserveIngest(len(docs), len(chunks), nil)
	s.log.Info("ingested documents", append(ctxutil.LogFields(ctx), "documents", len(docs), "chunks", len(chunks))...)
	return IngestResult{Documents: len(docs), Chunks: len(chunks)}, nil
}

// lockDocuments takes one lock per distinct documentId in sorted order, so two ingests that
// share documents always contend on the same first lock instead of holding one each.
func (s *service) lockDocuments(ctx context.Context, docs []knowledge.Document) (func(), error) {
	if s.opts.Locker == nil {
		return func() {}, nil
	}
	seen := map[string]bool{}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		id := strings.TrimSpace(d.DocumentID)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var releases []func()
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, id := range ids {
		rel, err := s.opts.Locker.Acquire(ctx, id)
		if err != nil {
			releaseAll()
			return nil, fmt.Errorf("lock document %s: %w", id, err)
		}
		releases = append(releases, rel)
	}
	return releaseAll, nil
}

func (s *service) SearchKnowledgeBase(ctx context.Context, query string, limit int) ([]knowledge.SearchResult, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "query", Reason: "is required"}
	}
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	results, err := s.index.Search(ctx, vector, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []knowledge.SearchResult{}
	}
	observability.Current().ObserveSearch(len(results))
	s.log.Debug("knowledge base search", append(ctxutil.LogFields(ctx), "limit", limit, "results", len(results))...)
	return results, nil
}

func (s *service) Stats(ctx context.Context) (knowledge.IndexStats, error) {
	return s.index.Stats(ctxutil.Default(ctx))
}

func (s *service) DeleteDocument(ctx context.Context, documentID string) error {
	ctx = ctxutil.Default(ctx)
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return &ValidationError{Field: "documentId", Reason: "is required"}
	}
	release, err := s.lockDocuments(ctx, []knowledge.Document{{DocumentID: documentID}})
	if err != nil {
		return err
	}
	defer release()
	if err := s.index.DeleteByDocumentID(ctx, documentID); err != nil {
		return err
	}
	s.log.Info("deleted document", append(ctxutil.LogFields(ctx), "document_id", documentID)...)
	return nil
}
