package app

import (
	"context"

	"github.com/yungbote/voicewatch-backend/internal/config"
	apphttp "github.com/yungbote/voicewatch-backend/internal/http"
	httpH "github.com/yungbote/voicewatch-backend/internal/http/handlers"
	httpMW "github.com/yungbote/voicewatch-backend/internal/http/middleware"
	"github.com/yungbote/voicewatch-backend/internal/observability"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Knowledge *httpH.KnowledgeHandler
	Calls     *httpH.CallHandler
	Review    *httpH.ReviewHandler
	Prompts   *httpH.PromptHandler
	AI        *httpH.AIHandler
}

func wireHandlers(log *logger.Logger, cfg config.Config, clients Clients, services Services) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.ReadinessCheck{}
	if clients.Qdrant != nil {
		checks["qdrant"] = clients.Qdrant.Ready
	}
	if clients.Redis != nil {
		rdb := clients.Redis
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	h := Handlers{
		Health:    httpH.NewHealthHandler(checks),
		Knowledge: httpH.NewKnowledgeHandler(log, services.Knowledge, cfg.RAG.SearchLimit),
		Calls:     httpH.NewCallHandler(log, services.Calls),
		Review:    httpH.NewReviewHandler(log, services.Calls),
		Prompts:   httpH.NewPromptHandler(log, services.Calls),
	}
	if services.Analysis != nil {
		h.AI = httpH.NewAIHandler(log, services.Analysis)
	}
	return h
}

func wireMiddleware(log *logger.Logger, cfg config.Config) Middleware {
	log.Info("Wiring middleware...")
	if cfg.Auth.JWTSecret == "" {
		log.Warn("AUTH_JWT_SECRET not set; write routes are unauthenticated")
	}
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.Auth.JWTSecret),
	}
}

func routerConfig(log *logger.Logger, cfg config.Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) apphttp.RouterConfig {
	return apphttp.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		CORSOrigins:      cfg.HTTP.CORSOrigins,
		Tracing:          cfg.Telemetry.Enabled,
		AuthMiddleware:   middleware.Auth,
		KnowledgeHandler: handlers.Knowledge,
		CallHandler:      handlers.Calls,
		ReviewHandler:    handlers.Review,
		PromptHandler:    handlers.Prompts,
		AIHandler:        handlers.AI,
		HealthHandler:    handlers.Health,
	}
}
