package ghcli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGH struct {
	calls   [][]string
	outputs []string
	errs    []error
	next    int
}

func (f *fakeGH) run(_ context.Context, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	i := f.next
	f.next++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.outputs) {
		return f.outputs[i], nil
	}
	return "", nil
}

func TestName(t *testing.T) {
	assert.Equal(t, "cli", New().Name())
}

func TestPostComment(t *testing.T) {
	f := &fakeGH{}
	b := &Binding{run: f.run}

	require.NoError(t, b.PostComment(t.Context(), "o", "r", 42, "hello"))
	require.Len(t, f.calls, 1)
	assert.Equal(t, []string{"issue", "comment", "42", "--repo", "o/r", "--body", "hello"}, f.calls[0])
}

func TestPostCommentFallsBackToPRSubcommand(t *testing.T) {
	f := &fakeGH{errs: []error{fmt.Errorf("gh: not an issue")}}
	b := &Binding{run: f.run}

	require.NoError(t, b.PostComment(t.Context(), "o", "r", 7, "hello"))
	require.Len(t, f.calls, 2)
	assert.Equal(t, "pr", f.calls[1][0])
}

func TestPostCommentBothFail(t *testing.T) {
	f := &fakeGH{errs: []error{fmt.Errorf("nope"), fmt.Errorf("still nope")}}
	b := &Binding{run: f.run}

	err := b.PostComment(t.Context(), "o", "r", 7, "hello")
	assert.Error(t, err)
}

func TestCreatePullRequest(t *testing.T) {
	f := &fakeGH{outputs: []string{"Creating pull request...\nhttps://github.com/o/r/pull/9\n"}}
	b := &Binding{run: f.run}

	pr, err := b.CreatePullRequest(t.Context(), "o", "r", "title", "Fixes #42", "autoclaude/issue-42", "main")
	require.NoError(t, err)
	require.NotNil(t, pr)
	assert.Equal(t, 9, pr.Number)
	assert.Equal(t, "https://github.com/o/r/pull/9", pr.URL)

	require.Len(t, f.calls, 1)
	joined := strings.Join(f.calls[0], " ")
	assert.Contains(t, joined, "--head autoclaude/issue-42")
	assert.Contains(t, joined, "--base main")
}

func TestCreatePullRequestDegradesOnFailure(t *testing.T) {
	f := &fakeGH{errs: []error{fmt.Errorf("gh: not authenticated")}}
	b := &Binding{run: f.run}

	pr, err := b.CreatePullRequest(t.Context(), "o", "r", "t", "b", "h", "main")
	require.NoError(t, err)
	assert.Nil(t, pr)
}

func TestGetPullRequestInfo(t *testing.T) {
	f := &fakeGH{outputs: []string{`{"headRefName":"feature-x","baseRefName":"develop"}`}}
	b := &Binding{run: f.run}

	info, err := b.GetPullRequestInfo(t.Context(), "o", "r", 7)
	require.NoError(t, err)
	assert.Equal(t, "feature-x", info.HeadBranch)
	assert.Equal(t, "develop", info.BaseBranch)

	assert.Equal(t, []string{"pr", "view", "7", "--repo", "o/r", "--json", "headRefName,baseRefName"}, f.calls[0])
}

func TestGetPullRequestInfoBadJSON(t *testing.T) {
	f := &fakeGH{outputs: []string{"not json"}}
	b := &Binding{run: f.run}

	_, err := b.GetPullRequestInfo(t.Context(), "o", "r", 7)
	assert.Error(t, err)
}

func TestNumberFromURL(t *testing.T) {
	assert.Equal(t, 9, numberFromURL("https://github.com/o/r/pull/9"))
	assert.Equal(t, 0, numberFromURL("https://github.com/o/r"))
	assert.Equal(t, 0, numberFromURL(""))
}
