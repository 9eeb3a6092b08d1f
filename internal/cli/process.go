package cli

import (
	"fmt"
	"strconv"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/spf13/cobra"

	"github.com/autoclaude/autoclaude/internal/assistant"
	"github.com/autoclaude/autoclaude/internal/config"
	"github.com/autoclaude/autoclaude/internal/gitops"
	"github.com/autoclaude/autoclaude/internal/orchestrator"
	"github.com/autoclaude/autoclaude/internal/server"
)

var (
	processOwnerFlag string
	processRepoFlag  string
)

func init() {
	processCmd.Flags().StringVar(&processOwnerFlag, "owner", "", "Repository owner (default from config)")
	processCmd.Flags().StringVar(&processRepoFlag, "repo", "", "Repository name (default from config)")
	rootCmd.AddCommand(processCmd)
}

// processCmd runs the orchestrator for one issue without waiting for a
// webhook. Useful for manual triggering and local testing.
var processCmd = &cobra.Command{
	Use:   "process <issue-number>",
	Short: "Run the orchestrator on a single issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid issue number %q", args[0])
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		owner := processOwnerFlag
		if owner == "" {
			owner = cfg.GitHub.Owner
		}
		repo := processRepoFlag
		if repo == "" {
			repo = cfg.GitHub.Repo
		}
		if owner == "" || repo == "" {
			return fmt.Errorf("repository owner and name are required (github.owner / github.repo or --owner / --repo)")
		}

		ctx := cmd.Context()

		client := gh.NewClient(github_ratelimit.NewClient(nil))
		if cfg.GitHub.Token != "" {
			client = client.WithAuthToken(cfg.GitHub.Token)
		}
		issue, _, err := client.Issues.Get(ctx, owner, repo, number)
		if err != nil {
			return fmt.Errorf("fetching issue #%d: %w", number, err)
		}
		if issue.IsPullRequest() {
			return fmt.Errorf("#%d is a pull request; only issues can be processed directly", number)
		}

		gw, err := server.BuildGateway(cfg)
		if err != nil {
			return err
		}

		workDir := config.ExpandHome(cfg.Repo.WorkDir)
		orch := orchestrator.New(
			assistant.New(cfg.Assistant),
			gitops.New(workDir, cfg.Repo.BaseBranch),
			gw,
			workDir,
			cfg.Repo.BranchPrefix,
		)

		item := orchestrator.WorkItem{
			Number: number,
			Title:  issue.GetTitle(),
			Body:   issue.GetBody(),
			URL:    issue.GetHTMLURL(),
			Owner:  owner,
			Repo:   repo,
		}

		result := orch.Run(ctx, item)
		fmt.Fprintf(cmd.OutOrStdout(), "outcome: %s\n", result.Outcome)
		if result.Branch != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "branch: %s\n", result.Branch)
		}
		if result.PR != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "pull request: %s\n", result.PR.URL)
		}
		if result.Err != nil {
			return fmt.Errorf("run failed: %w", result.Err)
		}
		return nil
	},
}
