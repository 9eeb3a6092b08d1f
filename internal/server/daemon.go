package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/autoclaude/autoclaude/internal/config"
)

// PIDFilePath returns the path to the daemon PID file.
func PIDFilePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			slog.Error("cannot determine home directory; set $HOME or $XDG_DATA_HOME", "error", err)
			os.Exit(1)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "autoclaude", "autoclauded.pid")
}

// withStartLock serializes daemon starts with an exclusive file lock, so two
// racing `server start` invocations cannot both pass the running check.
func withStartLock(fn func() error) error {
	lockPath := PIDFilePath() + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	fileLock := flock.New(lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring lock on %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("timed out acquiring lock on %s", lockPath)
	}
	defer fileLock.Unlock()

	return fn()
}

// StartDaemon starts the webhook daemon. If foreground is true, runs the
// server inline without forking.
func StartDaemon(port int, foreground bool) error {
	return withStartLock(func() error {
		if running, pid, _, _ := DaemonStatus(); running {
			return fmt.Errorf("daemon already running (PID %d)", pid)
		}

		if foreground {
			return runForeground(port)
		}
		return forkDaemon(port)
	})
}

func forkDaemon(port int) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		defaultCfg := config.DefaultConfig()
		cfg = &defaultCfg
	}

	logDir := config.ExpandHome(cfg.Server.LogDir)
	if logDir == "" {
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			home, _ := os.UserHomeDir()
			dataDir = filepath.Join(home, ".local", "share")
		}
		logDir = filepath.Join(dataDir, "autoclaude", "logs")
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	logFile := filepath.Join(logDir, "autoclauded.log")

	// Re-exec with --foreground; the child owns the PID file.
	forkArgs := []string{"server", "start", "--foreground", "--port", strconv.Itoa(port)}
	cmd := exec.Command(os.Args[0], forkArgs...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	cmd.Stdout = f
	cmd.Stderr = f
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		f.Close()
		return fmt.Errorf("starting daemon: %w", err)
	}

	pid := cmd.Process.Pid

	// Release without waiting; do NOT call cmd.Wait() in the parent.
	cmd.Process.Release()
	f.Close()

	fmt.Printf("daemon started (PID: %d)\n", pid)
	fmt.Printf("log file: %s\n", logFile)
	return nil
}

func runForeground(port int) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		defaultCfg := config.DefaultConfig()
		cfg = &defaultCfg
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	if err := writePIDFile(os.Getpid()); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	srv, err := NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx, cfg.Server.Port)
}

// StopDaemon sends SIGTERM to the running daemon and waits for exit.
func StopDaemon() error {
	running, pid, _, err := DaemonStatus()
	if err != nil {
		return err
	}
	if !running {
		return fmt.Errorf("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process: %w", err)
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
			removePIDFile()
			return nil
		}
		return fmt.Errorf("sending SIGTERM: %w", err)
	}

	deadline := time.After(10 * time.Second)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			_ = proc.Signal(syscall.SIGKILL)
			removePIDFile()
			return fmt.Errorf("daemon did not stop gracefully, sent SIGKILL")
		case <-ticker.C:
			if err := proc.Signal(syscall.Signal(0)); err != nil {
				// Process is gone.
				removePIDFile()
				return nil
			}
		}
	}
}

// DaemonStatus checks whether the daemon is running.
// Returns: running bool, pid int, uptime duration, error.
func DaemonStatus() (bool, int, time.Duration, error) {
	pidFile := PIDFilePath()
	data, err := os.ReadFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, 0, nil
		}
		return false, 0, 0, fmt.Errorf("reading PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, 0, 0, fmt.Errorf("invalid PID file: %w", err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		removePIDFile()
		return false, 0, 0, nil
	}

	if err := proc.Signal(syscall.Signal(0)); err != nil {
		// Stale PID file.
		removePIDFile()
		return false, 0, 0, nil
	}

	info, err := os.Stat(pidFile)
	if err != nil {
		return true, pid, 0, nil
	}
	return true, pid, time.Since(info.ModTime()), nil
}

func writePIDFile(pid int) error {
	pidFile := PIDFilePath()
	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		return fmt.Errorf("creating PID directory: %w", err)
	}

	// Atomic write: temp file + rename.
	tmp := pidFile + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	if err := os.Rename(tmp, pidFile); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming PID file: %w", err)
	}
	return nil
}

func removePIDFile() {
	_ = os.Remove(PIDFilePath())
}
