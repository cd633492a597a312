package app

import (
	"context"

	"github.com/yungbote/voicewatch-backend/internal/config"
	"github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/mcp"
	"github.com/yungbote/voicewatch-backend/internal/observability"
	"github.com/yungbote/voicewatch-backend/internal/pkg/dbctx"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	"github.com/yungbote/voicewatch-backend/internal/services/analysis"
	callsvc "github.com/yungbote/voicewatch-backend/internal/services/calls"
	knowledgesvc "github.com/yungbote/voicewatch-backend/internal/services/knowledge"
)

type Services struct {
	Knowledge knowledgesvc.Service
	Calls     callsvc.Service
	// Analysis is nil when no OpenAI key is configured.
	Analysis analysis.Service
}

func wireServices(log *logger.Logger, cfg config.Config, clients Clients, reposet Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	knowledge, err := wireKnowledge(log, cfg, clients, metrics)
	if err != nil {
		return Services{}, err
	}

	out := Services{
		Knowledge: knowledge,
		Calls: callsvc.NewService(log,
			reposet.Calls,
			reposet.Annotations,
			reposet.TestCases,
			reposet.Tickets,
			reposet.Prompts,
		),
	}
	if clients.OpenAI != nil {
		out.Analysis = analysis.NewService(log, clients.OpenAI, knowledge)
	}
	return out, nil
}

func wireMCP(log *logger.Logger, cfg config.Config, services Services) (*mcp.Server, error) {
	return mcp.NewServer(log, &mcp.Ports{
		Knowledge:    services.Knowledge,
		FailureModes: failureModeSource{calls: services.Calls},
	}, cfg.RAG.SearchLimit)
}

// failureModeSource adapts the call service to the MCP failure-mode resource.
type failureModeSource struct {
	calls callsvc.Service
}

func (f failureModeSource) FailureModes(ctx context.Context) ([]calls.FailureModeCount, error) {
	return f.calls.FailureModes(dbctx.Context{Ctx: ctx})
}
