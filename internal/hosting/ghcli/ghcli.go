// Package ghcli is the hosting gateway binding that shells out to the gh
// command-line tool. Useful on hosts where gh is already authenticated and
// no token should be handled by autoclaude itself.
package ghcli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/autoclaude/autoclaude/internal/hosting"
)

// runner executes gh with the given args. Swapped out in tests.
type runner func(ctx context.Context, args ...string) (string, error)

// Binding implements hosting.Gateway via the gh CLI.
type Binding struct {
	run runner
}

// New creates a gh CLI binding.
func New() *Binding {
	return &Binding{run: runGH}
}

// Name returns "cli".
func (b *Binding) Name() string {
	return "cli"
}

// PostComment posts a comment via gh. PRs and issues share comment numbering
// on GitHub, but gh insists on the matching subcommand, so issue comments on
// a PR number go through `gh pr comment`.
func (b *Binding) PostComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, err := b.run(ctx, "issue", "comment", strconv.Itoa(number),
		"--repo", owner+"/"+repo, "--body", body)
	if err != nil {
		// gh rejects `issue comment` on PR numbers in some versions; retry
		// through the pr subcommand before giving up.
		_, prErr := b.run(ctx, "pr", "comment", strconv.Itoa(number),
			"--repo", owner+"/"+repo, "--body", body)
		if prErr != nil {
			return fmt.Errorf("posting comment on %s/%s#%d: %w", owner, repo, number, err)
		}
	}
	return nil
}

// CreatePullRequest opens a pull request via gh. Failures degrade to a nil
// result, matching the API binding.
func (b *Binding) CreatePullRequest(ctx context.Context, owner, repo, title, body, head, base string) (*hosting.PullRequest, error) {
	out, err := b.run(ctx, "pr", "create",
		"--repo", owner+"/"+repo,
		"--title", title,
		"--body", body,
		"--head", head,
		"--base", base)
	if err != nil {
		slog.Warn("pull request creation failed, continuing without a PR",
			"repo", fmt.Sprintf("%s/%s", owner, repo), "head", head, "error", err)
		return nil, nil
	}

	// gh pr create prints the PR URL on the last line.
	url := lastLine(out)
	return &hosting.PullRequest{
		Number: numberFromURL(url),
		URL:    url,
	}, nil
}

// GetPullRequestInfo fetches head/base refs via gh pr view --json.
func (b *Binding) GetPullRequestInfo(ctx context.Context, owner, repo string, number int) (*hosting.PullRequestInfo, error) {
	out, err := b.run(ctx, "pr", "view", strconv.Itoa(number),
		"--repo", owner+"/"+repo,
		"--json", "headRefName,baseRefName")
	if err != nil {
		return nil, fmt.Errorf("getting PR %s/%s#%d: %w", owner, repo, number, err)
	}

	var view struct {
		HeadRefName string `json:"headRefName"`
		BaseRefName string `json:"baseRefName"`
	}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		return nil, fmt.Errorf("parsing gh pr view output: %w", err)
	}

	return &hosting.PullRequestInfo{
		HeadBranch: view.HeadRefName,
		BaseBranch: view.BaseRefName,
	}, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// numberFromURL extracts the PR number from a .../pull/<n> URL, or 0.
func numberFromURL(url string) int {
	parts := strings.Split(strings.Trim(url, "/"), "/")
	for i, p := range parts {
		if p == "pull" && i+1 < len(parts) {
			if n, err := strconv.Atoi(parts[i+1]); err == nil {
				return n
			}
		}
	}
	return 0
}

// runGH executes the gh binary.
func runGH(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("gh %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

// Verify Binding implements hosting.Gateway at compile time.
var _ hosting.Gateway = (*Binding)(nil)
