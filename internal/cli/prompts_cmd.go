package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/autoclaude/autoclaude/internal/prompts"
)

func init() {
	rootCmd.AddCommand(promptsCmd)
}

// promptsCmd lists the prompt templates and their descriptions, so operators
// know which names a ~/.config/autoclaude/prompts/ override can shadow.
var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List prompt templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := prompts.List()
		if err != nil {
			return fmt.Errorf("listing prompt templates: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, name := range names {
			_, meta, err := prompts.Load(name)
			if err != nil {
				return fmt.Errorf("loading prompt template %s: %w", name, err)
			}
			fmt.Fprintf(w, "%s\t%s\n", name, meta.Description)
		}
		return w.Flush()
	},
}
