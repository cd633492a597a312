package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/voicewatch-backend/internal/http/handlers"
	httpMW "github.com/yungbote/voicewatch-backend/internal/http/middleware"
	"github.com/yungbote/voicewatch-backend/internal/observability"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

const ServiceName = "voicewatch-backend"

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	Tracing        bool
	AuthMiddleware *httpMW.AuthMiddleware

	KnowledgeHandler *httpH.KnowledgeHandler
	CallHandler      *httpH.CallHandler
	ReviewHandler    *httpH.ReviewHandler
	PromptHandler    *httpH.PromptHandler
	AIHandler        *httpH.AIHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	writes := cfg.AuthMiddleware.RequireWriteAuth()

	// Knowledge base, at the root and under /api/rag
	if cfg.KnowledgeHandler != nil {
		for _, g := range []*gin.RouterGroup{r.Group("/"), r.Group("/api/rag")} {
			g.Use(writes)
			g.POST("/ingest", cfg.KnowledgeHandler.Ingest)
			g.POST("/search", cfg.KnowledgeHandler.Search)
			g.GET("/search", cfg.KnowledgeHandler.SearchQuery)
			g.GET("/stats", cfg.KnowledgeHandler.Stats)
			g.DELETE("/documents/:documentId", cfg.KnowledgeHandler.DeleteDocument)
		}
	}

	api := r.Group("/api")
	api.Use(writes)
	{
		// Calls
		if cfg.CallHandler != nil {
			api.GET("/calls", cfg.CallHandler.ListCalls)
			api.POST("/calls", cfg.CallHandler.SaveCall)
			api.DELETE("/calls/:id", cfg.CallHandler.DeleteCall)
			api.GET("/annotations", cfg.CallHandler.Annotations)
			api.POST("/annotations", cfg.CallHandler.SaveAnnotation)
		}

		// Test cases and tickets
		if cfg.ReviewHandler != nil {
			api.GET("/test-cases", cfg.ReviewHandler.ListTestCases)
			api.POST("/test-cases", cfg.ReviewHandler.SaveTestCase)
			api.GET("/tickets", cfg.ReviewHandler.ListTickets)
			api.POST("/tickets", cfg.ReviewHandler.SaveTicket)
		}

		// Prompts
		if cfg.PromptHandler != nil {
			api.GET("/prompts", cfg.PromptHandler.GetPrompts)
			api.POST("/prompts", cfg.PromptHandler.SavePrompt)
			api.DELETE("/prompts", cfg.PromptHandler.DeletePrompt)
		}

		// AI helpers
		if cfg.AIHandler != nil {
			api.POST("/ai/chat", cfg.AIHandler.Chat)
			api.POST("/ai/categorize", cfg.AIHandler.Categorize)
			api.POST("/ai/suggest-fix", cfg.AIHandler.SuggestFix)
			api.POST("/ai/generate-test-case", cfg.AIHandler.GenerateTestCase)
			api.POST("/ai/create-ticket", cfg.AIHandler.CreateTicket)
		}
	}

	return r
}
