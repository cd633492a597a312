package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
	"github.com/yungbote/voicewatch-backend/internal/platform/ctxutil"
	knowledgesvc "github.com/yungbote/voicewatch-backend/internal/services/knowledge"
)

const ToolSearchKnowledgeBase = "search_knowledge_base"

var errQueryRequired = errors.New("query is required")

type SearchInput struct {
	Query string `json:"query" jsonschema:"what the caller is asking about"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

type SearchOutput struct {
	Results []knowledge.SearchResult `json:"results"`
	Count   int                      `json:"count"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolSearchKnowledgeBase,
		Description: "Search the company knowledge base for guidelines relevant to the caller's question",
	}, s.handleSearch)
}

// handleSearch answers with the formatted passages as text and the raw hits as structured output.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, errQueryRequired
	}
	limit := input.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	results, err := s.ports.Knowledge.SearchKnowledgeBase(ctx, input.Query, limit)
	if err != nil {
		s.log.Warn("knowledge search failed", append(ctxutil.LogFields(ctx), "error", err)...)
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []knowledge.SearchResult{}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: knowledgesvc.FormatResults(results)}},
	}, SearchOutput{Results: results, Count: len(results)}, nil
}
