// Package gitops wraps the local git tool as sequential, awaitable steps.
// Each operation is a single external command; nonzero exit is an error and
// nothing retries internally — the orchestrator decides what a failure means.
package gitops

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// runner executes a git subcommand in dir and returns combined output.
// Swapped out in tests.
type runner func(dir string, args ...string) (string, error)

// Gateway runs git commands against a fixed working directory.
type Gateway struct {
	workDir    string
	baseBranch string
	run        runner
}

// New creates a Gateway for the given working directory and base branch.
func New(workDir, baseBranch string) *Gateway {
	if baseBranch == "" {
		baseBranch = "main"
	}
	return &Gateway{workDir: workDir, baseBranch: baseBranch, run: runGit}
}

// BaseBranch returns the configured base branch.
func (g *Gateway) BaseBranch() string {
	return g.baseBranch
}

// CheckoutNewBranch creates and checks out a new branch off the current HEAD.
func (g *Gateway) CheckoutNewBranch(name string) error {
	_, err := g.run(g.workDir, "checkout", "-b", name)
	return err
}

// CheckoutExisting checks out an existing local or remote-tracking branch.
func (g *Gateway) CheckoutExisting(name string) error {
	_, err := g.run(g.workDir, "checkout", name)
	return err
}

// Fetch fetches a ref from the named remote.
func (g *Gateway) Fetch(remote, ref string) error {
	_, err := g.run(g.workDir, "fetch", remote, ref)
	return err
}

// Status returns the porcelain change summary of the working tree.
// Empty output means no uncommitted changes.
func (g *Gateway) Status() (string, error) {
	out, err := g.run(g.workDir, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HasUncommittedChanges reports whether the working tree is dirty.
func (g *Gateway) HasUncommittedChanges() (bool, error) {
	out, err := g.Status()
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// CommitAll stages everything and commits with the given message.
func (g *Gateway) CommitAll(message string) error {
	if _, err := g.run(g.workDir, "add", "-A"); err != nil {
		return err
	}
	_, err := g.run(g.workDir, "commit", "-m", message)
	return err
}

// Push pushes the branch to origin, optionally setting upstream tracking.
func (g *Gateway) Push(branch string, setUpstream bool) error {
	args := []string{"push"}
	if setUpstream {
		args = append(args, "-u")
	}
	args = append(args, "origin", branch)
	_, err := g.run(g.workDir, args...)
	return err
}

// DeleteBranch force-deletes a local branch.
func (g *Gateway) DeleteBranch(name string) error {
	_, err := g.run(g.workDir, "branch", "-D", name)
	return err
}

// CheckoutBase returns the working tree to the base branch.
func (g *Gateway) CheckoutBase() error {
	return g.CheckoutExisting(g.baseBranch)
}

// LogRange returns the one-line log of commits reachable from toRef but not
// fromRef. Used to detect commits the assistant made on its own.
func (g *Gateway) LogRange(fromRef, toRef string) (string, error) {
	out, err := g.run(g.workDir, "log", "--oneline", fmt.Sprintf("%s..%s", fromRef, toRef))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HasNewCommits reports whether toRef has commits that fromRef does not.
func (g *Gateway) HasNewCommits(fromRef, toRef string) (bool, error) {
	out, err := g.LogRange(fromRef, toRef)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// CurrentBranch returns the name of the currently checked-out branch.
func (g *Gateway) CurrentBranch() (string, error) {
	out, err := g.run(g.workDir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// runGit executes git with the given args in dir.
func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	slog.Debug("git", "args", args, "dir", dir)
	return string(out), nil
}
