package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	knowledgesvc "github.com/yungbote/voicewatch-backend/internal/services/knowledge"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base",
	Long: `Embeds the query and returns the closest guideline chunks, formatted the
way the voice agent sees them.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = RAG_SEARCH_LIMIT)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}
	return withKnowledge(cmd, func(ctx context.Context, svc knowledgesvc.Service) error {
		results, err := svc.SearchKnowledgeBase(ctx, query, searchLimit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if searchJSON {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal results: %w", err)
			}
			cmd.Println(string(data))
			return nil
		}
		cmd.Println(knowledgesvc.FormatResults(results))
		return nil
	})
}
