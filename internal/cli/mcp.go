package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/voicewatch-backend/internal/mcp"
	knowledgesvc "github.com/yungbote/voicewatch-backend/internal/services/knowledge"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server for voice agents",
	Long: `Exposes the search_knowledge_base tool and the knowledge stats resource over
the Model Context Protocol.

By default the server speaks JSON-RPC on stdio, which is what agent runtimes
that spawn tools as subprocesses expect. Use --addr to serve the streamable
HTTP transport instead.

Examples:
  voicewatch mcp
  voicewatch mcp --addr :8091`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", "", "HTTP listen address (empty = stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	return withKnowledge(cmd, func(ctx context.Context, svc knowledgesvc.Service) error {
		server, err := mcp.NewServer(log, &mcp.Ports{Knowledge: svc}, cfg.RAG.SearchLimit)
		if err != nil {
			return err
		}
		if mcpAddr != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on %s\n", mcpAddr)
			return server.RunHTTP(ctx, mcpAddr)
		}
		return server.Run(ctx)
	})
}
