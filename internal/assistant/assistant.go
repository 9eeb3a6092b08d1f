// Package assistant invokes the external AI coding assistant as a subprocess.
//
// The assistant is a black box: it receives a textual prompt on stdin, runs
// against a working directory, and returns free-form text on stdout. It may
// edit files in the working tree and occasionally commits despite being told
// not to — callers are expected to check for both.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/autoclaude/autoclaude/internal/config"
)

// ErrTimeout is returned when the assistant exceeds its wall-clock timeout
// and is forcibly terminated.
var ErrTimeout = errors.New("assistant timed out")

// ExitError is returned when the assistant exits with a nonzero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("assistant exited with code %d", e.Code)
	}
	return fmt.Sprintf("assistant exited with code %d: %s", e.Code, stderr)
}

// Invoker runs the assistant with a prompt against a working directory and
// returns its accumulated output.
type Invoker interface {
	Invoke(ctx context.Context, prompt, workDir string) (string, error)
}

// Subprocess is the production Invoker. Each Invoke launches a fresh
// assistant process; there is no session state between calls.
type Subprocess struct {
	command string
	args    []string
	timeout time.Duration

	// mirror receives a live copy of the assistant's stdout for operator
	// observability. Defaults to os.Stdout.
	mirror io.Writer
}

// New creates a Subprocess invoker from the assistant configuration.
// When skip_permissions is set, the flag that bypasses interactive permission
// prompts is appended so the assistant can run unattended.
func New(cfg config.AssistantConfig) *Subprocess {
	args := append([]string{}, cfg.Args...)
	if cfg.SkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}
	return &Subprocess{
		command: cfg.Command,
		args:    args,
		timeout: cfg.ParseTimeout(),
		mirror:  os.Stdout,
	}
}

// Invoke runs the assistant and returns its trimmed stdout.
//
// The prompt is delivered on stdin rather than as an argument — argument
// passing hangs on some shells and runs into length limits for large issue
// bodies. Stdin is closed after the write so the assistant sees EOF.
func (s *Subprocess) Invoke(ctx context.Context, prompt, workDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.command, s.args...)
	cmd.Dir = workDir
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr strings.Builder
	cmd.Stdout = io.MultiWriter(&stdout, s.mirror)
	cmd.Stderr = &stderr

	slog.Debug("invoking assistant", "command", s.command, "workDir", workDir, "promptBytes", len(prompt))
	start := time.Now()

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("starting assistant %q: %w", s.command, err)
	}

	err := cmd.Wait()
	elapsed := time.Since(start).Round(time.Millisecond)

	if ctx.Err() == context.DeadlineExceeded {
		slog.Warn("assistant killed after timeout", "timeout", s.timeout, "elapsed", elapsed)
		return "", fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return "", fmt.Errorf("waiting for assistant: %w", err)
	}

	slog.Debug("assistant finished", "elapsed", elapsed, "outputBytes", stdout.Len())
	return strings.TrimSpace(stdout.String()), nil
}
