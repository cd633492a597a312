package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/voicewatch-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the REST API, plus the MCP HTTP endpoint when MCP_ADDR is set and the
Prometheus endpoint when METRICS_ENABLED is true. Stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := app.New(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Run(ctx)
}
