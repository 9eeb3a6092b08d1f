// Package api is the token-authenticated REST binding of the hosting gateway.
package api

import (
	"context"
	"fmt"
	"log/slog"

	github_ratelimit "github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"

	"github.com/autoclaude/autoclaude/internal/hosting"
)

// Binding implements hosting.Gateway against the GitHub REST API.
type Binding struct {
	client *gh.Client
}

// New creates an API binding authenticated with the given token.
// Uses go-github-ratelimit middleware for automatic rate limit handling.
func New(token string) *Binding {
	rateLimiter := github_ratelimit.NewClient(nil)
	client := gh.NewClient(rateLimiter).WithAuthToken(token)
	return &Binding{client: client}
}

// Name returns "api".
func (b *Binding) Name() string {
	return "api"
}

// PostComment posts a comment on an issue or pull request.
func (b *Binding) PostComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := b.client.Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("posting comment on %s/%s#%d: %w", owner, repo, number, err)
	}
	return nil
}

// CreatePullRequest opens a pull request. Failures are logged and degrade to
// a nil result — typically the token lacks PR scope.
func (b *Binding) CreatePullRequest(ctx context.Context, owner, repo, title, body, head, base string) (*hosting.PullRequest, error) {
	pr, _, err := b.client.PullRequests.Create(ctx, owner, repo, &gh.NewPullRequest{
		Title: gh.Ptr(title),
		Body:  gh.Ptr(body),
		Head:  gh.Ptr(head),
		Base:  gh.Ptr(base),
	})
	if err != nil {
		slog.Warn("pull request creation failed, continuing without a PR",
			"repo", fmt.Sprintf("%s/%s", owner, repo), "head", head, "error", err)
		return nil, nil
	}

	return &hosting.PullRequest{
		Number: pr.GetNumber(),
		URL:    pr.GetHTMLURL(),
	}, nil
}

// GetPullRequestInfo fetches the head/base branch refs of a pull request.
func (b *Binding) GetPullRequestInfo(ctx context.Context, owner, repo string, number int) (*hosting.PullRequestInfo, error) {
	pr, _, err := b.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("getting PR %s/%s#%d: %w", owner, repo, number, err)
	}

	return &hosting.PullRequestInfo{
		HeadBranch: pr.GetHead().GetRef(),
		BaseBranch: pr.GetBase().GetRef(),
	}, nil
}

// Verify Binding implements hosting.Gateway at compile time.
var _ hosting.Gateway = (*Binding)(nil)
