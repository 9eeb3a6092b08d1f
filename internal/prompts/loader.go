// Package prompts holds the embedded prompt templates sent to the assistant.
// Each template is a markdown file with YAML frontmatter describing it.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/adrg/frontmatter"
)

//go:embed *.md
var builtinFS embed.FS

// Meta is the YAML frontmatter carried by each prompt template.
type Meta struct {
	Description string `yaml:"description"`
}

// Load returns the prompt template and its metadata for the given name.
// A user override at ~/.config/autoclaude/prompts/<name> takes precedence
// over the embedded template.
func Load(name string) (*template.Template, *Meta, error) {
	data, err := read(name)
	if err != nil {
		return nil, nil, err
	}

	var meta Meta
	body, err := frontmatter.Parse(strings.NewReader(string(data)), &meta)
	if err != nil {
		// Templates without frontmatter are still usable.
		body = data
	}

	tmpl, err := template.New(name).Parse(string(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing prompt template %s: %w", name, err)
	}
	return tmpl, &meta, nil
}

// Execute loads a template and executes it with the given data map.
func Execute(name string, data map[string]string) (string, error) {
	tmpl, _, err := Load(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// List returns the names of all embedded prompt templates.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func read(name string) ([]byte, error) {
	if configDir, err := os.UserConfigDir(); err == nil {
		userPath := filepath.Join(configDir, "autoclaude", "prompts", name)
		if data, err := os.ReadFile(userPath); err == nil {
			return data, nil
		}
	}

	data, err := builtinFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("loading prompt template %s: %w", name, err)
	}
	return data, nil
}
