package mcp

import (
	"context"
	"errors"

	"github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
)

var ErrMissingKnowledgeService = errors.New("knowledge service is required")

// KnowledgePort is the retrieval surface the voice agent reaches through MCP.
type KnowledgePort interface {
	SearchKnowledgeBase(ctx context.Context, query string, limit int) ([]knowledge.SearchResult, error)
	Stats(ctx context.Context) (knowledge.IndexStats, error)
}

// FailureModePort lists reviewer failure modes. Optional.
type FailureModePort interface {
	FailureModes(ctx context.Context) ([]calls.FailureModeCount, error)
}

type Ports struct {
	Knowledge    KnowledgePort
	FailureModes FailureModePort
}

func (p *Ports) Validate() error {
	if p == nil || p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	return nil
}
