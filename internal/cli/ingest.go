package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/yungbote/voicewatch-backend/internal/config"
	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
	"github.com/yungbote/voicewatch-backend/internal/platform/qdrant"
	"github.com/yungbote/voicewatch-backend/internal/rag/chunking"
	knowledgesvc "github.com/yungbote/voicewatch-backend/internal/services/knowledge"
)

var (
	ingestRetries uint64
	ingestTitle   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Add guideline documents to the knowledge base",
	Long: `Chunks, embeds and upserts documents into the vector index.

A .json file holds either an array of documents or an object with a
"documents" array, each with content, documentId and source. Any other
file is ingested whole, with its base name as the document id and source.
Re-ingesting a document id replaces the chunks stored under it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Uint64Var(&ingestRetries, "retries", 3, "extra attempts when the vector store or embedding API fails")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "title for plain text files")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	docs, err := loadDocuments(args, ingestTitle)
	if err != nil {
		return err
	}
	if err := knowledgesvc.ValidateDocuments(docs); err != nil {
		return err
	}

	return withKnowledge(cmd, func(ctx context.Context, svc knowledgesvc.Service) error {
		backoff := retry.WithMaxRetries(ingestRetries, retry.NewExponential(500*time.Millisecond))
		var res knowledgesvc.IngestResult
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			r, err := svc.IngestDocuments(ctx, docs)
			if err != nil {
				if permanent(err) {
					return err
				}
				log.Warn("ingest attempt failed", "error", err)
				return retry.RetryableError(err)
			}
			res = r
			return nil
		})
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		cmd.Printf("Successfully ingested %d documents (%d chunks)\n", res.Documents, res.Chunks)
		return nil
	})
}

// permanent reports errors that another attempt cannot fix: bad input, bad settings,
// a collection with the wrong dimension, or a Qdrant rejection that is not a 429/5xx.
func permanent(err error) bool {
	var cerr *config.ConfigurationError
	if knowledgesvc.IsValidationError(err) || errors.As(err, &cerr) ||
		errors.Is(err, chunking.ErrInvalidOptions) || errors.Is(err, context.Canceled) {
		return true
	}
	var qerr *qdrant.OperationError
	return errors.As(err, &qerr) && !qerr.Retryable()
}

type documentsFile struct {
	Documents []knowledge.Document `json:"documents"`
}

func loadDocuments(paths []string, title string) ([]knowledge.Document, error) {
	var docs []knowledge.Document
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			parsed, err := decodeDocuments(raw)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			docs = append(docs, parsed...)
			continue
		}
		base := filepath.Base(path)
		docs = append(docs, knowledge.Document{
			Content:    string(raw),
			DocumentID: strings.TrimSuffix(base, filepath.Ext(base)),
			Source:     base,
			Title:      title,
		})
	}
	return docs, nil
}

func decodeDocuments(raw []byte) ([]knowledge.Document, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var docs []knowledge.Document
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}
	var wrapped documentsFile
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Documents == nil {
		return nil, errors.New(`expected an array or an object with a "documents" array`)
	}
	return wrapped.Documents, nil
}
