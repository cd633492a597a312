package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "voicewatch://"

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "knowledge/stats",
		Name:        "knowledge-stats",
		Description: "Point and segment counts of the knowledge base collection",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "failure-modes",
		Name:        "failure-modes",
		Description: "Failure modes reviewers have assigned to calls, most frequent first",
		MIMEType:    "application/json",
	}, s.handleFailureModesResource)
}

func (s *Server) handleStatsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Knowledge.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return jsonResource(req.Params.URI, stats)
}

func (s *Server) handleFailureModesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if s.ports.FailureModes == nil {
		return jsonResource(req.Params.URI, []any{})
	}
	modes, err := s.ports.FailureModes.FailureModes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing failure modes: %w", err)
	}
	return jsonResource(req.Params.URI, modes)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(raw),
		}},
	}, nil
}
