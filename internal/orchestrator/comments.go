package orchestrator

import (
	"fmt"
	"strings"

	"github.com/autoclaude/autoclaude/internal/analysis"
	"github.com/autoclaude/autoclaude/internal/hosting"
)

// commitMessage returns the deterministic commit message for a run.
func commitMessage(item WorkItem) string {
	if item.IsPullRequest {
		return fmt.Sprintf("fix: address review comments on PR #%d", item.Number)
	}
	return fmt.Sprintf("fix: resolve issue #%d - %s", item.Number, item.Title)
}

// prTitle returns the title for a newly created pull request.
func prTitle(item WorkItem) string {
	return fmt.Sprintf("fix: resolve issue #%d - %s", item.Number, item.Title)
}

// prBody returns the body for a newly created pull request. "Fixes #<n>"
// makes GitHub close the issue when the PR merges.
func prBody(item WorkItem, a *analysis.Analysis, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fixes #%d\n\n", item.Number)
	b.WriteString("## Summary of changes\n\n")
	b.WriteString(strings.TrimSpace(summary))
	fmt.Fprintf(&b, "\n\n---\n*Automated fix by autoclaude. Confidence: %s, estimated complexity: %s.*\n",
		a.Confidence, a.EstimatedComplexity)
	return b.String()
}

// issueResolvedComment is posted on the originating issue after publishing.
func issueResolvedComment(pr *hosting.PullRequest, branch string) string {
	if pr == nil {
		return fmt.Sprintf("🤖 I've pushed a fix to branch `%s`, but could not open a pull request (likely missing credentials). Please open one manually.", branch)
	}
	return fmt.Sprintf("🤖 I've opened #%d with a proposed fix: %s", pr.Number, pr.URL)
}

// prAddressedComment is posted on the PR after pushing to its branch.
func prAddressedComment(a *analysis.Analysis, summary string) string {
	var b strings.Builder
	b.WriteString("🤖 I've addressed the review comments and pushed an update — please take another look.\n\n")
	b.WriteString("## What changed\n\n")
	b.WriteString(strings.TrimSpace(summary))
	fmt.Fprintf(&b, "\n\n---\n*Confidence: %s, estimated complexity: %s.*\n", a.Confidence, a.EstimatedComplexity)
	return b.String()
}

// rejectionComment explains why the item will not be auto-resolved.
func rejectionComment(a *analysis.Analysis) string {
	return fmt.Sprintf("🤖 I analyzed this item and concluded it cannot be resolved automatically.\n\n**Reason:** %s\n\n**Confidence:** %s\n\nA human will need to take a look.",
		a.Reason, a.Confidence)
}

// noChangesComment is posted when the assistant decided no edit was needed.
func noChangesComment(a *analysis.Analysis) string {
	return fmt.Sprintf("🤖 I looked into this but found no changes necessary.\n\n**Analysis:** %s\n\nIf you believe a change is still required, please add more detail.",
		a.Reason)
}

// analysisFailedComment is posted when the assistant could not produce a
// parseable analysis.
func analysisFailedComment(err error) string {
	return fmt.Sprintf("🤖 **Analysis Failed**\n\nI could not analyze this item automatically.\n\n```\n%v\n```\n\nA human will need to take a look.", err)
}

// fixFailedComment is posted when the fix stage failed after analysis
// succeeded. Includes what the assistant planned, so readers see how far it got.
func fixFailedComment(a *analysis.Analysis, err error) string {
	var b strings.Builder
	b.WriteString("🤖 **Automated Fix Failed**\n\nI analyzed this item and attempted a fix, but something went wrong.\n\n")
	if a != nil {
		fmt.Fprintf(&b, "**Confidence:** %s\n\n**Planned approach:** %s\n\n", a.Confidence, a.Approach)
	}
	fmt.Fprintf(&b, "**Error:**\n```\n%v\n```\n\nA human will need to take a look.", err)
	return b.String()
}
