// Package orchestrator drives the analyze → decide → fix → verify → publish
// state machine for a single work item.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/autoclaude/autoclaude/internal/analysis"
	"github.com/autoclaude/autoclaude/internal/assistant"
	"github.com/autoclaude/autoclaude/internal/hosting"
	"github.com/autoclaude/autoclaude/internal/prompts"
)

// WorkItem is the normalized unit of work derived from a webhook event: an
// opened issue, or a qualifying mention comment on a pull request.
// Immutable; one WorkItem corresponds to exactly one Run.
type WorkItem struct {
	Number        int
	Title         string
	Body          string
	URL           string
	Owner         string
	Repo          string
	IsPullRequest bool
	// CommentBody is set only for mention-triggered PR runs.
	CommentBody string
}

// Outcome is the terminal result of a run. Every run ends in exactly one.
type Outcome string

const (
	OutcomePullRequestCreated Outcome = "pull_request_created"
	OutcomePushedToExistingPR Outcome = "pushed_to_existing_pr"
	OutcomeNoChangesNeeded    Outcome = "no_changes_needed"
	OutcomeAnalysisFailed     Outcome = "analysis_failed"
	OutcomeFixFailed          Outcome = "fix_failed"
	OutcomeRejected           Outcome = "rejected"
)

// Result summarizes a completed run.
type Result struct {
	Outcome Outcome
	Branch  string
	PR      *hosting.PullRequest
	Err     error
}

// VCS is the local version-control surface the orchestrator drives.
// Implemented by gitops.Gateway.
type VCS interface {
	BaseBranch() string
	CheckoutNewBranch(name string) error
	CheckoutExisting(name string) error
	Fetch(remote, ref string) error
	HasUncommittedChanges() (bool, error)
	CommitAll(message string) error
	Push(branch string, setUpstream bool) error
	DeleteBranch(name string) error
	CheckoutBase() error
	HasNewCommits(fromRef, toRef string) (bool, error)
	CurrentBranch() (string, error)
}

// Orchestrator coordinates the assistant, the VCS gateway, and the hosting
// gateway for one run at a time. It holds no per-run state; concurrent runs
// against the same working directory will race on git state, which is an
// accepted limitation — serialize dispatch or use one workdir per run.
type Orchestrator struct {
	invoker      assistant.Invoker
	vcs          VCS
	hosting      hosting.Gateway
	workDir      string
	branchPrefix string
}

// New creates an Orchestrator.
func New(invoker assistant.Invoker, vcs VCS, gw hosting.Gateway, workDir, branchPrefix string) *Orchestrator {
	if branchPrefix == "" {
		branchPrefix = "autoclaude"
	}
	return &Orchestrator{
		invoker:      invoker,
		vcs:          vcs,
		hosting:      gw,
		workDir:      workDir,
		branchPrefix: branchPrefix,
	}
}

// branchContext tracks the branch a run operates on and whether this run
// created it (fresh branches are deleted on no-op and failure; pre-existing
// PR branches never are).
type branchContext struct {
	name  string
	base  string
	fresh bool
	// compareRef is the ref new commits are detected against.
	compareRef string
}

// Run executes the state machine for one work item. It never returns an
// error to the caller — every failure is absorbed into a terminal outcome
// and surfaced as a posted comment. The working tree is returned to the base
// branch before Run returns, on every path.
func (o *Orchestrator) Run(ctx context.Context, item WorkItem) Result {
	log := slog.With("repo", item.Owner+"/"+item.Repo, "number", item.Number, "pr", item.IsPullRequest)
	log.Info("starting run", "title", item.Title)

	// Analyzing. No branch exists yet, so failures here need no rollback.
	a, err := o.analyze(ctx, item)
	if err != nil {
		log.Warn("analysis failed", "error", err)
		o.postComment(ctx, item, analysisFailedComment(err))
		return Result{Outcome: OutcomeAnalysisFailed, Err: err}
	}

	// Decision.
	if !a.CanResolve {
		log.Info("item rejected", "reason", a.Reason, "confidence", a.Confidence)
		o.postComment(ctx, item, rejectionComment(a))
		return Result{Outcome: OutcomeRejected}
	}

	// Everything from branch preparation on must leave the working tree on
	// the base branch, whatever happens.
	defer func() {
		if err := o.vcs.CheckoutBase(); err != nil {
			log.Warn("failed to restore base branch", "error", err)
			return
		}
		if branch, err := o.vcs.CurrentBranch(); err == nil && branch != o.vcs.BaseBranch() {
			log.Warn("working tree left off the base branch", "branch", branch)
		}
	}()

	bc, err := o.prepareBranch(ctx, item)
	if err != nil {
		return o.failRun(ctx, item, a, bc, err)
	}
	log.Info("branch prepared", "branch", bc.name, "fresh", bc.fresh)

	summary, err := o.fix(ctx, item, a)
	if err != nil {
		return o.failRun(ctx, item, a, bc, err)
	}

	// Change check: uncommitted edits, plus commits the assistant may have
	// made despite being told not to.
	dirty, err := o.vcs.HasUncommittedChanges()
	if err != nil {
		return o.failRun(ctx, item, a, bc, err)
	}
	committed, err := o.vcs.HasNewCommits(bc.compareRef, "HEAD")
	if err != nil {
		return o.failRun(ctx, item, a, bc, err)
	}

	if !dirty && !committed {
		log.Info("assistant made no changes")
		o.cleanupBranch(bc)
		o.postComment(ctx, item, noChangesComment(a))
		return Result{Outcome: OutcomeNoChangesNeeded, Branch: bc.name}
	}

	if dirty {
		if err := o.vcs.CommitAll(commitMessage(item)); err != nil {
			return o.failRun(ctx, item, a, bc, err)
		}
	}

	result, err := o.publish(ctx, item, a, bc, summary)
	if err != nil {
		return o.failRun(ctx, item, a, bc, err)
	}

	log.Info("run finished", "outcome", result.Outcome, "branch", result.Branch)
	return result
}

// analyze builds the analysis prompt, invokes the assistant, and extracts
// the structured verdict.
func (o *Orchestrator) analyze(ctx context.Context, item WorkItem) (*analysis.Analysis, error) {
	prompt, err := prompts.Execute("analyze.md", map[string]string{
		"Number":      strconv.Itoa(item.Number),
		"Title":       item.Title,
		"Body":        item.Body,
		"CommentBody": item.CommentBody,
	})
	if err != nil {
		return nil, fmt.Errorf("building analysis prompt: %w", err)
	}

	out, err := o.invoker.Invoke(ctx, prompt, o.workDir)
	if err != nil {
		return nil, err
	}

	return analysis.Extract(out)
}

// prepareBranch sets up the branch the fix will be made on. Issue runs get a
// fresh deterministic branch off the base; PR runs fetch and check out the
// PR's existing head branch.
func (o *Orchestrator) prepareBranch(ctx context.Context, item WorkItem) (*branchContext, error) {
	if item.IsPullRequest {
		info, err := o.hosting.GetPullRequestInfo(ctx, item.Owner, item.Repo, item.Number)
		if err != nil {
			return &branchContext{base: o.vcs.BaseBranch()}, err
		}
		bc := &branchContext{
			name:       info.HeadBranch,
			base:       info.BaseBranch,
			compareRef: "origin/" + info.HeadBranch,
		}
		if err := o.vcs.Fetch("origin", info.HeadBranch); err != nil {
			return bc, err
		}
		if err := o.vcs.CheckoutExisting(info.HeadBranch); err != nil {
			return bc, err
		}
		return bc, nil
	}

	bc := &branchContext{
		name:       fmt.Sprintf("%s/issue-%d", o.branchPrefix, item.Number),
		base:       o.vcs.BaseBranch(),
		compareRef: o.vcs.BaseBranch(),
	}
	if err := o.vcs.CheckoutNewBranch(bc.name); err != nil {
		return bc, err
	}
	bc.fresh = true
	return bc, nil
}

// fix invokes the assistant to implement the change and returns its summary.
func (o *Orchestrator) fix(ctx context.Context, item WorkItem, a *analysis.Analysis) (string, error) {
	name := "fix_issue.md"
	if item.IsPullRequest {
		name = "fix_pr.md"
	}
	prompt, err := prompts.Execute(name, map[string]string{
		"Number":      strconv.Itoa(item.Number),
		"Title":       item.Title,
		"Body":        item.Body,
		"CommentBody": item.CommentBody,
		"Approach":    a.Approach,
	})
	if err != nil {
		return "", fmt.Errorf("building fix prompt: %w", err)
	}

	return o.invoker.Invoke(ctx, prompt, o.workDir)
}

// publish pushes the change and posts the outward-facing comment / PR.
func (o *Orchestrator) publish(ctx context.Context, item WorkItem, a *analysis.Analysis, bc *branchContext, summary string) (Result, error) {
	if item.IsPullRequest {
		if err := o.vcs.Push(bc.name, false); err != nil {
			return Result{}, err
		}
		// The push already landed; a refused comment must not undo the run.
		o.postComment(ctx, item, prAddressedComment(a, summary))
		return Result{Outcome: OutcomePushedToExistingPR, Branch: bc.name}, nil
	}

	if err := o.vcs.Push(bc.name, true); err != nil {
		return Result{}, err
	}

	pr, err := o.hosting.CreatePullRequest(ctx, item.Owner, item.Repo,
		prTitle(item), prBody(item, a, summary), bc.name, bc.base)
	if err != nil {
		return Result{}, err
	}

	// Branch pushed and PR (when possible) created; the issue comment is a
	// courtesy and degrades like any other comment.
	o.postComment(ctx, item, issueResolvedComment(pr, bc.name))

	return Result{Outcome: OutcomePullRequestCreated, Branch: bc.name, PR: pr}, nil
}

// failRun is the single failure path for everything after the decision
// stage: best-effort rollback, then a failure comment. Secondary errors
// during rollback are logged and swallowed, never escalated.
func (o *Orchestrator) failRun(ctx context.Context, item WorkItem, a *analysis.Analysis, bc *branchContext, cause error) Result {
	slog.Error("run failed", "repo", item.Owner+"/"+item.Repo, "number", item.Number, "error", cause)
	o.cleanupBranch(bc)
	o.postComment(ctx, item, fixFailedComment(a, cause))
	branch := ""
	if bc != nil {
		branch = bc.name
	}
	return Result{Outcome: OutcomeFixFailed, Branch: branch, Err: cause}
}

// cleanupBranch returns to base and removes the branch if this run created
// it. Best effort throughout.
func (o *Orchestrator) cleanupBranch(bc *branchContext) {
	if bc == nil {
		return
	}
	if err := o.vcs.CheckoutBase(); err != nil {
		slog.Warn("cleanup: failed to checkout base branch", "error", err)
	}
	if bc.fresh {
		if err := o.vcs.DeleteBranch(bc.name); err != nil {
			slog.Warn("cleanup: failed to delete branch", "branch", bc.name, "error", err)
		}
	}
}

// postComment posts an outward-facing comment, logging instead of failing
// when the hosting service refuses it — a missing comment must never take
// down a run that has already reached a terminal outcome.
func (o *Orchestrator) postComment(ctx context.Context, item WorkItem, body string) {
	if err := o.hosting.PostComment(ctx, item.Owner, item.Repo, item.Number, body); err != nil {
		slog.Warn("failed to post comment", "repo", item.Owner+"/"+item.Repo, "number", item.Number, "error", err)
	}
}
