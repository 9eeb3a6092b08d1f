package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/autoclaude/autoclaude/internal/config"
	"github.com/autoclaude/autoclaude/internal/history"
)

var runsLimitFlag int

func init() {
	runsCmd.Flags().IntVar(&runsLimitFlag, "limit", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent orchestrator runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.Server.HistoryDB == "" {
			return fmt.Errorf("run history is not configured (server.history_db)")
		}

		store, err := history.Open(config.ExpandHome(cfg.Server.HistoryDB))
		if err != nil {
			return fmt.Errorf("opening run history: %w", err)
		}
		defer store.Close()

		runs, err := store.Recent(runsLimitFlag)
		if err != nil {
			return fmt.Errorf("reading run history: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded yet")
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("238"))).
			Headers("When", "Repo", "#", "Trigger", "Outcome", "Duration", "PR").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		for _, r := range runs {
			t = t.Row(
				r.StartedAt.Local().Format("2006-01-02 15:04"),
				r.Owner+"/"+r.Repo,
				strconv.Itoa(r.Number),
				r.Trigger,
				r.Outcome,
				r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
				r.PRURL,
			)
		}

		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		return nil
	},
}
