// Package cli is the voicewatch command line: the HTTP server, the MCP server and
// offline knowledge base maintenance.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/voicewatch-backend/internal/app"
	"github.com/yungbote/voicewatch-backend/internal/config"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	knowledgesvc "github.com/yungbote/voicewatch-backend/internal/services/knowledge"
)

// version is overridden at build time with -ldflags "-X .../internal/cli.version=...".
var version = "dev"

var (
	configPath string
	logMode    string

	cfg config.Config
	log *logger.Logger
)

// newKnowledge is swapped in tests.
var newKnowledge func(ctx context.Context, log *logger.Logger, cfg config.Config) (knowledgesvc.Service, func(), error) = app.NewKnowledge

var rootCmd = &cobra.Command{
	Use:   "voicewatch",
	Short: "Voice agent monitoring backend",
	Long: `voicewatch serves the call monitoring API and the RAG knowledge base that
voice agents query for guidelines during a call.

Configuration is read from a YAML file, then overridden by environment
variables (a .env file in the working directory is loaded first).`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "logger mode (development, production, nop); overrides LOG_MODE")
}

// Execute runs the root command with ctx, typically a signal-aware context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadRuntime(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logMode != "" {
		loaded.Log.Mode = logMode
	}
	l, err := logger.New(loaded.Log.Mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cfg = loaded
	log = l
	return nil
}

// withKnowledge wires the RAG pipeline, ensures the collection exists and runs fn.
func withKnowledge(cmd *cobra.Command, fn func(ctx context.Context, svc knowledgesvc.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, closeFn, err := newKnowledge(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	if err := svc.Init(ctx); err != nil {
		return fmt.Errorf("initialize knowledge base: %w", err)
	}
	return fn(ctx, svc)
}
