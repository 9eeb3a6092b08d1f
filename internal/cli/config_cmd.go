package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"

	"github.com/autoclaude/autoclaude/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage autoclaude configuration",
	Long:  `Show and modify autoclaude configuration values.`,
}

var configJSONFlag bool

func init() {
	configShowCmd.Flags().BoolVar(&configJSONFlag, "json", false, "Output raw JSON without formatting")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		redacted := redactConfig(cfg)

		var data []byte
		if configJSONFlag {
			data, err = json.Marshal(redacted)
		} else {
			data, err = json.MarshalIndent(redacted, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

// redactConfig returns a copy of the config with secret fields masked.
func redactConfig(cfg *config.Config) *config.Config {
	copy := *cfg
	if copy.GitHub.Token != "" {
		copy.GitHub.Token = "***"
	}
	if copy.Server.WebhookSecret != "" {
		copy.Server.WebhookSecret = "***"
	}
	return &copy
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a configuration value using a dotted key path.

The value is written to .autoclaude/autoclaude.jsonc in the repository root.
The file is created if it does not exist.

Note: JSONC comments are not preserved on write.

Examples:
  autoclaude config set server.port 8080
  autoclaude config set github.binding cli
  autoclaude config set assistant.timeout 10m`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		rawValue := args[1]

		// Determine value type: try bool, then number, then string.
		var value any
		if b, err := strconv.ParseBool(rawValue); err == nil {
			value = b
		} else if i, err := strconv.ParseInt(rawValue, 10, 64); err == nil {
			value = i
		} else if f, err := strconv.ParseFloat(rawValue, 64); err == nil {
			value = f
		} else {
			value = rawValue
		}

		repoRoot := config.RepoRoot()
		if repoRoot == "" {
			return fmt.Errorf("not in a git repository")
		}

		configDir := filepath.Join(repoRoot, ".autoclaude")
		repoConfigPath := filepath.Join(configDir, "autoclaude.jsonc")

		// sjson needs valid JSON, so strip JSONC comments first.
		var existing []byte
		if data, err := os.ReadFile(repoConfigPath); err == nil {
			existing = jsonc.ToJSON(data)
		} else {
			existing = []byte("{}")
		}

		updated, err := sjson.SetBytes(existing, key, value)
		if err != nil {
			return fmt.Errorf("setting key %q: %w", key, err)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		if err := os.WriteFile(repoConfigPath, updated, 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, value)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create a user-level configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()

		workDir := cfg.Repo.WorkDir
		token := ""
		secret := ""
		mention := cfg.Repo.Mention
		binding := string(cfg.GitHub.Binding)
		port := strconv.Itoa(cfg.Server.Port)

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Working directory (local clone the assistant edits)").
					Value(&workDir).
					Validate(func(s string) error {
						if s == "" {
							return fmt.Errorf("working directory is required")
						}
						return nil
					}),
				huh.NewInput().
					Title("GitHub token (leave empty to use $GITHUB_TOKEN)").
					EchoMode(huh.EchoModePassword).
					Value(&token),
				huh.NewInput().
					Title("Webhook secret (leave empty to disable verification)").
					EchoMode(huh.EchoModePassword).
					Value(&secret),
				huh.NewInput().
					Title("Mention handle for PR comment triggers (without @)").
					Value(&mention),
				huh.NewSelect[string]().
					Title("GitHub binding").
					Options(
						huh.NewOption("REST API (token)", "api"),
						huh.NewOption("gh CLI", "cli"),
					).
					Value(&binding),
				huh.NewInput().
					Title("Server port").
					Value(&port),
			),
		)

		if err := form.Run(); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}

		cfg.Repo.WorkDir = workDir
		cfg.GitHub.Token = token
		cfg.Server.WebhookSecret = secret
		cfg.Repo.Mention = mention
		cfg.GitHub.Binding = config.HostingBinding(binding)
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}

		userDir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("getting config dir: %w", err)
		}
		configDir := filepath.Join(userDir, "autoclaude")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		path := filepath.Join(configDir, "autoclaude.jsonc")
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}
