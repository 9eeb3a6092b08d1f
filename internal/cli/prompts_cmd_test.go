package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptsCommandListsTemplates(t *testing.T) {
	var out bytes.Buffer
	promptsCmd.SetOut(&out)

	require.NoError(t, promptsCmd.RunE(promptsCmd, nil))

	assert.Contains(t, out.String(), "analyze.md")
	assert.Contains(t, out.String(), "fix_issue.md")
	assert.Contains(t, out.String(), "fix_pr.md")
}
