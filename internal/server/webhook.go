package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"github.com/autoclaude/autoclaude/internal/history"
	"github.com/autoclaude/autoclaude/internal/orchestrator"
)

// ErrInvalidSignature is returned when webhook signature verification fails.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// webhookPayload is the subset of the GitHub webhook body the router needs.
// Both `issues` and `issue_comment` events share this shape.
type webhookPayload struct {
	Action  string          `json:"action"`
	Issue   *webhookIssue   `json:"issue"`
	Comment *webhookComment `json:"comment"`
	Repo    webhookRepo     `json:"repository"`
}

type webhookIssue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	// PullRequest is present only when the issue is actually a PR.
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

type webhookComment struct {
	Body string `json:"body"`
}

type webhookRepo struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// verifySignature checks the x-hub-signature-256 header over the raw body.
// With no secret configured, verification is skipped with a warning — for
// local testing only.
func verifySignature(r *http.Request, body []byte, secret string) error {
	if secret == "" {
		slog.Warn("webhook secret not configured, skipping signature verification")
		return nil
	}
	sig := r.Header.Get("X-Hub-Signature-256")
	if err := gh.ValidateSignature(sig, body, []byte(secret)); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

// classify turns a webhook event into a WorkItem, or nil when the event is
// not actionable. Issues get picked up on open; PR comments only when they
// mention the configured handle.
func classify(eventType string, p *webhookPayload, mention string) (*orchestrator.WorkItem, string) {
	if p.Issue == nil {
		return nil, ""
	}

	item := orchestrator.WorkItem{
		Number: p.Issue.Number,
		Title:  p.Issue.Title,
		Body:   p.Issue.Body,
		URL:    p.Issue.HTMLURL,
		Owner:  p.Repo.Owner.Login,
		Repo:   p.Repo.Name,
	}

	switch eventType {
	case "issues":
		if p.Action != "opened" {
			return nil, ""
		}
		if p.Issue.PullRequest != nil {
			return nil, ""
		}
		return &item, history.TriggerIssue

	case "issue_comment":
		if p.Action != "created" || p.Comment == nil {
			return nil, ""
		}
		if p.Issue.PullRequest == nil {
			// A mention on a plain issue; the issue path already handled it
			// at open time.
			return nil, ""
		}
		if mention == "" {
			slog.Debug("mention handle not configured, ignoring PR comment")
			return nil, ""
		}
		if !strings.Contains(p.Comment.Body, "@"+mention) {
			return nil, ""
		}
		item.IsPullRequest = true
		item.CommentBody = p.Comment.Body
		return &item, history.TriggerPRComment
	}

	return nil, ""
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := verifySignature(r, body, s.webhookSecret); err != nil {
		slog.Warn("rejecting webhook", "error", err, "remote", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid signature"})
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	item, trigger := classify(eventType, &payload, s.mention)
	if item == nil {
		slog.Debug("ignoring webhook event", "event", eventType, "action", payload.Action)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ignored"})
		return
	}

	slog.Info("accepted webhook event", "event", eventType,
		"repo", item.Owner+"/"+item.Repo, "number", item.Number)
	s.dispatcher.Dispatch(*item, trigger)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}
