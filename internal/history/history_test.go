package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)

	started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(Run{
		Owner:      "o",
		Repo:       "r",
		Number:     42,
		Trigger:    TriggerIssue,
		Outcome:    "pull_request_created",
		Branch:     "autoclaude/issue-42",
		PRURL:      "https://github.com/o/r/pull/99",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
	}))
	require.NoError(t, s.Record(Run{
		Owner:      "o",
		Repo:       "r",
		Number:     7,
		Trigger:    TriggerPRComment,
		Outcome:    "fix_failed",
		Error:      "assistant timed out after 5m0s",
		StartedAt:  started.Add(time.Hour),
		FinishedAt: started.Add(time.Hour + 5*time.Minute),
	}))

	runs, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, 7, runs[0].Number)
	assert.Equal(t, TriggerPRComment, runs[0].Trigger)
	assert.Equal(t, "assistant timed out after 5m0s", runs[0].Error)

	assert.Equal(t, 42, runs[1].Number)
	assert.Equal(t, "autoclaude/issue-42", runs[1].Branch)
	assert.Equal(t, "https://github.com/o/r/pull/99", runs[1].PRURL)
	assert.Equal(t, started, runs[1].StartedAt)
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(Run{
			Owner: "o", Repo: "r", Number: i, Trigger: TriggerIssue, Outcome: "rejected",
			StartedAt: time.Now(), FinishedAt: time.Now(),
		}))
	}

	runs, err := s.Recent(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, 4, runs[0].Number)
}

func TestCount(t *testing.T) {
	s := openTestStore(t)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Record(Run{
		Owner: "o", Repo: "r", Number: 1, Trigger: TriggerIssue, Outcome: "rejected",
		StartedAt: time.Now(), FinishedAt: time.Now(),
	}))

	n, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(Run{
		Owner: "o", Repo: "r", Number: 1, Trigger: TriggerIssue, Outcome: "no_changes_needed",
		StartedAt: time.Now(), FinishedAt: time.Now(),
	}))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.Recent(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
