package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoclaude/autoclaude/internal/history"
	"github.com/autoclaude/autoclaude/internal/orchestrator"
)

// fakeRunner records dispatched work items.
type fakeRunner struct {
	mu     sync.Mutex
	items  []orchestrator.WorkItem
	result orchestrator.Result
}

func (f *fakeRunner) Run(ctx context.Context, item orchestrator.WorkItem) orchestrator.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
	return f.result
}

func (f *fakeRunner) runs() []orchestrator.WorkItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]orchestrator.WorkItem(nil), f.items...)
}

func newTestServer(t *testing.T, secret, mention string) (*Server, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{result: orchestrator.Result{Outcome: orchestrator.OutcomeRejected}}
	d := NewDispatcher(context.Background(), runner, nil, nil)
	return New(d, nil, NewHub(), secret, mention), runner
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

const issueOpenedBody = `{
	"action": "opened",
	"issue": {"number": 42, "title": "Fix typo", "body": "There is a typo.", "html_url": "https://github.com/o/r/issues/42"},
	"repository": {"name": "r", "owner": {"login": "o"}}
}`

func postWebhook(s *Server, event, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/github", strings.NewReader(body))
	req.Header.Set("X-GitHub-Event", event)
	if signature != "" {
		req.Header.Set("X-Hub-Signature-256", signature)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestWebhookValidSignatureDispatches(t *testing.T) {
	s, runner := newTestServer(t, "topsecret", "")

	rec := postWebhook(s, "issues", issueOpenedBody, sign("topsecret", []byte(issueOpenedBody)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	s.dispatcher.Wait()

	items := runner.runs()
	require.Len(t, items, 1)
	assert.Equal(t, 42, items[0].Number)
	assert.Equal(t, "o", items[0].Owner)
	assert.Equal(t, "r", items[0].Repo)
	assert.False(t, items[0].IsPullRequest)
}

func TestWebhookTamperedBodyRejected(t *testing.T) {
	s, runner := newTestServer(t, "topsecret", "")

	sig := sign("topsecret", []byte(issueOpenedBody))
	tampered := strings.Replace(issueOpenedBody, "Fix typo", "Do something evil", 1)
	rec := postWebhook(s, "issues", tampered, sig)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid signature", resp["error"])

	s.dispatcher.Wait()
	assert.Empty(t, runner.runs())
}

func TestWebhookMissingSignatureRejected(t *testing.T) {
	s, runner := newTestServer(t, "topsecret", "")

	rec := postWebhook(s, "issues", issueOpenedBody, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	s.dispatcher.Wait()
	assert.Empty(t, runner.runs())
}

func TestWebhookNoSecretSkipsVerification(t *testing.T) {
	s, runner := newTestServer(t, "", "")

	rec := postWebhook(s, "issues", issueOpenedBody, "")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	s.dispatcher.Wait()
	assert.Len(t, runner.runs(), 1)
}

func TestWebhookIgnoredEventStillOK(t *testing.T) {
	s, runner := newTestServer(t, "", "")

	body := strings.Replace(issueOpenedBody, `"opened"`, `"closed"`, 1)
	rec := postWebhook(s, "issues", body, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ignored", resp["status"])

	s.dispatcher.Wait()
	assert.Empty(t, runner.runs())
}

func TestWebhookMalformedJSON(t *testing.T) {
	s, _ := newTestServer(t, "", "")

	rec := postWebhook(s, "issues", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassifyIssueOpened(t *testing.T) {
	p := &webhookPayload{
		Action: "opened",
		Issue:  &webhookIssue{Number: 7, Title: "t", Body: "b", HTMLURL: "u"},
	}
	p.Repo.Name = "r"
	p.Repo.Owner.Login = "o"

	item, trigger := classify("issues", p, "autoclaude-bot")
	require.NotNil(t, item)
	assert.Equal(t, history.TriggerIssue, trigger)
	assert.Equal(t, 7, item.Number)
	assert.False(t, item.IsPullRequest)
	assert.Empty(t, item.CommentBody)
}

func TestClassifyIssueOtherActionsIgnored(t *testing.T) {
	for _, action := range []string{"closed", "edited", "reopened", "labeled"} {
		p := &webhookPayload{Action: action, Issue: &webhookIssue{Number: 1}}
		item, _ := classify("issues", p, "")
		assert.Nil(t, item, "action %s should be ignored", action)
	}
}

func TestClassifyPRCommentWithMention(t *testing.T) {
	p := &webhookPayload{
		Action:  "created",
		Issue:   &webhookIssue{Number: 9, Title: "t", PullRequest: &struct {
			URL string `json:"url"`
		}{URL: "https://api.github.com/repos/o/r/pulls/9"}},
		Comment: &webhookComment{Body: "@autoclaude-bot please fix the lint errors"},
	}

	item, trigger := classify("issue_comment", p, "autoclaude-bot")
	require.NotNil(t, item)
	assert.Equal(t, history.TriggerPRComment, trigger)
	assert.True(t, item.IsPullRequest)
	assert.Equal(t, "@autoclaude-bot please fix the lint errors", item.CommentBody)
}

func TestClassifyPRCommentWithoutMention(t *testing.T) {
	p := &webhookPayload{
		Action: "created",
		Issue: &webhookIssue{Number: 9, PullRequest: &struct {
			URL string `json:"url"`
		}{}},
		Comment: &webhookComment{Body: "looks good to me"},
	}

	item, _ := classify("issue_comment", p, "autoclaude-bot")
	assert.Nil(t, item)
}

func TestClassifyCommentOnPlainIssueIgnored(t *testing.T) {
	p := &webhookPayload{
		Action:  "created",
		Issue:   &webhookIssue{Number: 9},
		Comment: &webhookComment{Body: "@autoclaude-bot please fix this"},
	}

	item, _ := classify("issue_comment", p, "autoclaude-bot")
	assert.Nil(t, item)
}

func TestClassifyMentionUnconfiguredDisablesCommentPath(t *testing.T) {
	p := &webhookPayload{
		Action: "created",
		Issue: &webhookIssue{Number: 9, PullRequest: &struct {
			URL string `json:"url"`
		}{}},
		Comment: &webhookComment{Body: "@autoclaude-bot please fix this"},
	}

	item, _ := classify("issue_comment", p, "")
	assert.Nil(t, item)
}

func TestClassifyUnknownEvent(t *testing.T) {
	p := &webhookPayload{Action: "opened", Issue: &webhookIssue{Number: 1}}
	item, _ := classify("pull_request", p, "")
	assert.Nil(t, item)
}
