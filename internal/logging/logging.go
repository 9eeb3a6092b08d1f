// Package logging wires the process-wide slog logger. All packages log
// through log/slog; only the CLI entry point calls Setup.
package logging

import (
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Setup installs charmbracelet/log as the slog backend. An interactive
// terminal gets the colored text format; daemon log files and pipes get
// JSON so webhook runs stay machine-parseable.
func Setup(verbose bool) {
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
	})

	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler.SetLevel(level)

	if !isTerminal() {
		handler.SetFormatter(charmlog.JSONFormatter)
	}

	slog.SetDefault(slog.New(handler))
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
