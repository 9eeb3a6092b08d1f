package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/autoclaude/autoclaude/internal/config"
	"github.com/autoclaude/autoclaude/internal/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the autoclaude daemon",
	Long:  `Start, stop, and manage the autoclaude webhook daemon.`,
}

var (
	foregroundFlag bool
	portFlag       int
)

func init() {
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverStopCmd)
	serverCmd.AddCommand(serverStatusCmd)

	serverStartCmd.Flags().BoolVar(&foregroundFlag, "foreground", false, "Run in foreground (don't daemonize)")
	serverStartCmd.Flags().IntVar(&portFlag, "port", 0, "Server port (default from config or 3000)")

	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Server port (default from config or 3000)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(serveCmd)
}

func resolvePort() int {
	if portFlag != 0 {
		return portFlag
	}
	if cfg, err := config.Load(); err == nil && cfg.Server.Port != 0 {
		return cfg.Server.Port
	}
	return 3000
}

// serveCmd is shorthand for `server start --foreground`.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.StartDaemon(resolvePort(), true)
	},
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the autoclaude daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.StartDaemon(resolvePort(), foregroundFlag)
	},
}

var serverStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the autoclaude daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := server.StopDaemon(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "daemon stopped")
		return nil
	},
}

var serverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		running, pid, uptime, err := server.DaemonStatus()
		if err != nil {
			return err
		}

		if running {
			fmt.Fprintf(cmd.OutOrStdout(), "daemon is running (PID %d, uptime %s)\n", pid, uptime.Round(time.Second))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "daemon is not running")
		}
		return nil
	},
}
