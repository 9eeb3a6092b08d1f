package assistant

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoclaude/autoclaude/internal/config"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests shell out to sh")
	}
}

// newShellInvoker builds a Subprocess that runs a shell script instead of the
// real assistant binary.
func newShellInvoker(t *testing.T, script string, timeout time.Duration) *Subprocess {
	t.Helper()
	return &Subprocess{
		command: "sh",
		args:    []string{"-c", script},
		timeout: timeout,
		mirror:  &strings.Builder{},
	}
}

func TestInvokeEchoesStdin(t *testing.T) {
	skipOnWindows(t)

	inv := newShellInvoker(t, "cat", 10*time.Second)
	out, err := inv.Invoke(t.Context(), "hello assistant\n", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "hello assistant", out)
}

func TestInvokeTrimsOutput(t *testing.T) {
	skipOnWindows(t)

	inv := newShellInvoker(t, "echo '  result  '", 10*time.Second)
	out, err := inv.Invoke(t.Context(), "", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "result", out)
}

func TestInvokeRunsInWorkDir(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	inv := newShellInvoker(t, "pwd", 10*time.Second)
	out, err := inv.Invoke(t.Context(), "", dir)
	require.NoError(t, err)
	// macOS tempdirs resolve through /private; compare suffix.
	assert.True(t, strings.HasSuffix(out, dir), "got %q want suffix %q", out, dir)
}

func TestInvokeNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	inv := newShellInvoker(t, "echo 'boom' >&2; exit 3", 10*time.Second)
	_, err := inv.Invoke(t.Context(), "", t.TempDir())
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Contains(t, exitErr.Stderr, "boom")
	assert.Contains(t, err.Error(), "exited with code 3")
}

func TestInvokeTimeout(t *testing.T) {
	skipOnWindows(t)

	inv := newShellInvoker(t, "sleep 30", 100*time.Millisecond)
	start := time.Now()
	_, err := inv.Invoke(t.Context(), "", t.TempDir())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second, "process was not killed promptly")
}

func TestInvokeSpawnError(t *testing.T) {
	inv := &Subprocess{
		command: "/nonexistent/assistant-binary",
		timeout: time.Second,
		mirror:  &strings.Builder{},
	}
	_, err := inv.Invoke(t.Context(), "", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting assistant")
}

func TestInvokeMirrorsStdout(t *testing.T) {
	skipOnWindows(t)

	var mirror strings.Builder
	inv := newShellInvoker(t, "echo streamed", 10*time.Second)
	inv.mirror = &mirror

	_, err := inv.Invoke(t.Context(), "", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, mirror.String(), "streamed")
}

func TestNewAppendsSkipPermissionsFlag(t *testing.T) {
	inv := New(config.AssistantConfig{
		Command:         "claude",
		Args:            []string{"--print"},
		Timeout:         "5m",
		SkipPermissions: true,
	})
	assert.Equal(t, []string{"--print", "--dangerously-skip-permissions"}, inv.args)
	assert.Equal(t, 5*time.Minute, inv.timeout)

	inv = New(config.AssistantConfig{Command: "claude", Args: []string{"--print"}})
	assert.Equal(t, []string{"--print"}, inv.args)
}

func TestExitErrorMessage(t *testing.T) {
	e := &ExitError{Code: 1}
	assert.Equal(t, "assistant exited with code 1", e.Error())

	e = &ExitError{Code: 2, Stderr: "bad flag\n"}
	assert.Equal(t, "assistant exited with code 2: bad flag", e.Error())
}
