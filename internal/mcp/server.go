package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

const Version = "0.1.0"

// Server exposes the knowledge base to voice agents as MCP tools and resources.
type Server struct {
	log          *logger.Logger
	ports        *Ports
	defaultLimit int
	server       *mcp.Server
}

func NewServer(log *logger.Logger, ports *Ports, defaultLimit int) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	if defaultLimit <= 0 {
		defaultLimit = 5
	}

	s := &Server{
		log:          log.With("service", "MCPServer"),
		ports:        ports,
		defaultLimit: defaultLimit,
		server:       mcp.NewServer(&mcp.Implementation{Name: "voicewatch", Version: Version}, nil),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.log.Info("MCP server listening", "addr", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
