package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	knowledgesvc "github.com/yungbote/voicewatch-backend/internal/services/knowledge"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show vector collection statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withKnowledge(cmd, func(ctx context.Context, svc knowledgesvc.Service) error {
			stats, err := svc.Stats(ctx)
			if err != nil {
				return fmt.Errorf("stats failed: %w", err)
			}
			cmd.Printf("Points:          %d\n", stats.PointsCount)
			cmd.Printf("Indexed vectors: %d\n", stats.IndexedVectorsCount)
			cmd.Printf("Segments:        %d\n", stats.SegmentsCount)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <documentId>",
	Short: "Remove every chunk of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withKnowledge(cmd, func(ctx context.Context, svc knowledgesvc.Service) error {
			if err := svc.DeleteDocument(ctx, args[0]); err != nil {
				return fmt.Errorf("delete failed: %w", err)
			}
			cmd.Printf("Deleted document %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, deleteCmd)
}
