// Package hosting abstracts the source-control hosting service operations
// the orchestrator needs: posting comments, creating pull requests, and
// looking up pull request refs.
package hosting

import (
	"context"
	"fmt"
)

// PullRequest identifies a created pull request.
type PullRequest struct {
	Number int
	URL    string
}

// PullRequestInfo carries the branch refs of an existing pull request.
type PullRequestInfo struct {
	HeadBranch string
	BaseBranch string
}

// Gateway is the hosting capability consumed by the orchestrator. Both the
// REST API binding and the gh CLI binding implement it with identical
// semantics.
type Gateway interface {
	// Name returns the short identifier for this binding (e.g., "api", "cli").
	Name() string

	// PostComment posts a comment on an issue or pull request. GitHub uses
	// the issues comment endpoint for both.
	PostComment(ctx context.Context, owner, repo string, number int, body string) error

	// CreatePullRequest opens a pull request. On failure (typically absent
	// or insufficient credentials) it logs and returns a nil PullRequest
	// rather than an error — a missing PR degrades the run, it never aborts it.
	CreatePullRequest(ctx context.Context, owner, repo, title, body, head, base string) (*PullRequest, error)

	// GetPullRequestInfo fetches the head/base branch refs of a pull request.
	GetPullRequestInfo(ctx context.Context, owner, repo string, number int) (*PullRequestInfo, error)
}

// Registry manages registered Gateway bindings and provides lookup by name.
type Registry struct {
	gateways []Gateway
}

// NewRegistry creates an empty binding registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a Gateway binding to the registry.
func (r *Registry) Register(g Gateway) {
	r.gateways = append(r.gateways, g)
}

// Get looks up a registered binding by its Name().
func (r *Registry) Get(name string) (Gateway, error) {
	for _, g := range r.gateways {
		if g.Name() == name {
			return g, nil
		}
	}
	return nil, fmt.Errorf("no registered hosting binding with name: %s", name)
}
