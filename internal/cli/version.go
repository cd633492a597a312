package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	// Skips config loading so it works without a config file or credentials.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("voicewatch version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
