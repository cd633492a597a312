package mcp

import (
	"context"

	"github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
)

type mockKnowledge struct {
	results   []knowledge.SearchResult
	stats     knowledge.IndexStats
	err       error
	lastQuery string
	lastLimit int
}

func (m *mockKnowledge) SearchKnowledgeBase(ctx context.Context, query string, limit int) ([]knowledge.SearchResult, error) {
	m.lastQuery, m.lastLimit = query, limit
	return m.results, m.err
}

func (m *mockKnowledge) Stats(ctx context.Context) (knowledge.IndexStats, error) {
	return m.stats, m.err
}

type mockFailureModes struct {
	modes []calls.FailureModeCount
	err   error
}

func (m *mockFailureModes) FailureModes(ctx context.Context) ([]calls.FailureModeCount, error) {
	return m.modes, m.err
}
