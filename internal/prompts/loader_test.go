package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	names, err := List()
	require.NoError(t, err)
	assert.Contains(t, names, "analyze.md")
	assert.Contains(t, names, "fix_issue.md")
	assert.Contains(t, names, "fix_pr.md")
}

func TestLoadParsesFrontmatter(t *testing.T) {
	_, meta, err := Load("analyze.md")
	require.NoError(t, err)
	assert.NotEmpty(t, meta.Description)
}

func TestExecuteAnalyzeIssue(t *testing.T) {
	out, err := Execute("analyze.md", map[string]string{
		"Number": "42",
		"Title":  "Fix typo in README",
		"Body":   "The word 'teh' should be 'the'.",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Issue #42: Fix typo in README")
	assert.Contains(t, out, "teh")
	assert.Contains(t, out, `"canResolve"`)
	assert.NotContains(t, out, "description:", "frontmatter must not leak into the prompt")
}

func TestExecuteAnalyzeComment(t *testing.T) {
	out, err := Execute("analyze.md", map[string]string{
		"Number":      "7",
		"Title":       "Add retry",
		"CommentBody": "please rename this helper",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Pull request #7")
	assert.Contains(t, out, "please rename this helper")
	assert.NotContains(t, out, "Issue #7")
}

func TestExecuteFixPrompts(t *testing.T) {
	out, err := Execute("fix_issue.md", map[string]string{
		"Number":   "42",
		"Title":    "Fix typo",
		"Body":     "body",
		"Approach": "edit README",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "edit README")
	assert.Contains(t, out, "Do NOT commit")

	out, err = Execute("fix_pr.md", map[string]string{
		"Number":      "7",
		"Title":       "Add retry",
		"CommentBody": "rename helper",
		"Approach":    "rename it",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "pull request #7")
	assert.Contains(t, out, "rename helper")
}

func TestLoadMissing(t *testing.T) {
	_, _, err := Load("nope.md")
	assert.Error(t, err)
}
