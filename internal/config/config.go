package config

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"
)

// Load reads and merges configuration from user-level and repo-level JSONC files.
// Resolution order: defaults → user config (~/.config/autoclaude/autoclaude.jsonc)
// → repo config (.autoclaude/autoclaude.jsonc) → environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	userDir, err := os.UserConfigDir()
	if err == nil {
		userPath := filepath.Join(userDir, "autoclaude", "autoclaude.jsonc")
		if userMap, err := loadJSONC(userPath); err == nil {
			if err := mergeIntoConfig(&cfg, userMap); err != nil {
				return nil, fmt.Errorf("merging user config: %w", err)
			}
		}
	}

	repoRoot := RepoRoot()
	if repoRoot != "" {
		repoPath := filepath.Join(repoRoot, ".autoclaude", "autoclaude.jsonc")
		if repoMap, err := loadJSONC(repoPath); err == nil {
			if err := mergeIntoConfig(&cfg, repoMap); err != nil {
				return nil, fmt.Errorf("merging repo config: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// loadJSONC reads a JSONC file and returns it as a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jsonData := jsonc.ToJSON(data)
	var m map[string]any
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig marshals the config to a map, deep-merges the source map over it,
// then unmarshals back to the Config struct.
func mergeIntoConfig(cfg *Config, src map[string]any) error {
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(cfgBytes, &dst); err != nil {
		return err
	}

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return err
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, cfg)
}

// RepoRoot finds the git repository root via git rev-parse. Empty when not
// inside a repository.
func RepoRoot() string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if secret := os.Getenv("AUTOCLAUDE_WEBHOOK_SECRET"); secret != "" {
		cfg.Server.WebhookSecret = secret
	}
	if dir := os.Getenv("AUTOCLAUDE_WORKDIR"); dir != "" {
		cfg.Repo.WorkDir = dir
	}
	if mention := os.Getenv("AUTOCLAUDE_MENTION"); mention != "" {
		cfg.Repo.Mention = mention
	}
}

// ExpandHome replaces a leading "~/" in a path with the user's home directory.
// If the path does not start with "~/" or the home directory cannot be determined,
// the path is returned unchanged.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") && path != "~" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
