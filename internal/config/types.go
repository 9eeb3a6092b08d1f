package config

import "time"

// Config is the top-level autoclaude configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	GitHub    GitHubConfig    `json:"github"`
	Assistant AssistantConfig `json:"assistant"`
	Repo      RepoConfig      `json:"repo"`
}

// ServerConfig holds webhook daemon settings.
type ServerConfig struct {
	Port          int    `json:"port"`
	WebhookSecret string `json:"webhook_secret"`
	LogDir        string `json:"log_dir"`
	HistoryDB     string `json:"history_db"`
}

// HostingBinding selects how autoclaude talks to the GitHub API.
type HostingBinding string

const (
	// BindingAPI uses the token-authenticated REST API.
	BindingAPI HostingBinding = "api"
	// BindingCLI shells out to the gh command-line tool.
	BindingCLI HostingBinding = "cli"
)

// GitHubConfig holds hosting settings.
type GitHubConfig struct {
	Token   string         `json:"token"`
	Binding HostingBinding `json:"binding"`
	Owner   string         `json:"owner"`
	Repo    string         `json:"repo"`
}

// AssistantConfig controls the AI assistant subprocess.
type AssistantConfig struct {
	Command         string   `json:"command"`
	Args            []string `json:"args"`
	Timeout         string   `json:"timeout"`
	SkipPermissions bool     `json:"skip_permissions"`
}

// ParseTimeout returns the assistant timeout as a time.Duration.
func (a AssistantConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// RepoConfig defines the local working copy the assistant operates on.
type RepoConfig struct {
	WorkDir      string `json:"workdir"`
	BaseBranch   string `json:"base_branch"`
	BranchPrefix string `json:"branch_prefix"`
	Mention      string `json:"mention"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:      3000,
			LogDir:    "~/.local/share/autoclaude/logs",
			HistoryDB: "~/.local/share/autoclaude/history.db",
		},
		GitHub: GitHubConfig{
			Binding: BindingAPI,
		},
		Assistant: AssistantConfig{
			Command:         "claude",
			Args:            []string{"--print"},
			Timeout:         "5m",
			SkipPermissions: true,
		},
		Repo: RepoConfig{
			BaseBranch:   "main",
			BranchPrefix: "autoclaude",
		},
	}
}
