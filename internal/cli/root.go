// Package cli implements the autoclaude command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/autoclaude/autoclaude/internal/logging"
)

var (
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "autoclaude",
		Short: "GitHub webhook service that auto-resolves issues with an AI coding assistant",
		Long: `Autoclaude listens for GitHub issue and comment webhooks, asks an AI
coding assistant to analyze and fix each item, and publishes the result as a
pull request or a pushed update to an existing one.`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose)
	}
}

func Execute() error {
	return rootCmd.Execute()
}
