// Package server hosts the webhook HTTP surface and the daemon lifecycle.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/autoclaude/autoclaude/internal/assistant"
	"github.com/autoclaude/autoclaude/internal/config"
	"github.com/autoclaude/autoclaude/internal/gitops"
	"github.com/autoclaude/autoclaude/internal/history"
	"github.com/autoclaude/autoclaude/internal/hosting"
	"github.com/autoclaude/autoclaude/internal/hosting/api"
	"github.com/autoclaude/autoclaude/internal/hosting/ghcli"
	"github.com/autoclaude/autoclaude/internal/orchestrator"
)

// Server is the webhook HTTP server.
type Server struct {
	mux           *http.ServeMux
	dispatcher    *Dispatcher
	store         *history.Store // optional
	hub           *Hub
	webhookSecret string
	mention       string
	startTime     time.Time
}

// New assembles a Server around an already-built runner. store may be nil.
func New(dispatcher *Dispatcher, store *history.Store, hub *Hub, webhookSecret, mention string) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		dispatcher:    dispatcher,
		store:         store,
		hub:           hub,
		webhookSecret: webhookSecret,
		mention:       mention,
		startTime:     time.Now(),
	}
	s.registerRoutes()
	return s
}

// NewFromConfig wires the full dependency graph from configuration: the
// assistant subprocess, the git gateway, the hosting binding, the
// orchestrator, and (when configured) the run history store.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	gw, err := BuildGateway(cfg)
	if err != nil {
		return nil, err
	}

	workDir := config.ExpandHome(cfg.Repo.WorkDir)
	vcs := gitops.New(workDir, cfg.Repo.BaseBranch)
	orch := orchestrator.New(assistant.New(cfg.Assistant), vcs, gw, workDir, cfg.Repo.BranchPrefix)

	var store *history.Store
	if cfg.Server.HistoryDB != "" {
		store, err = history.Open(config.ExpandHome(cfg.Server.HistoryDB))
		if err != nil {
			return nil, fmt.Errorf("opening run history: %w", err)
		}
	}

	hub := NewHub()
	dispatcher := NewDispatcher(ctx, orch, store, hub)
	return New(dispatcher, store, hub, cfg.Server.WebhookSecret, cfg.Repo.Mention), nil
}

// BuildGateway selects the configured hosting binding from the registry.
func BuildGateway(cfg *config.Config) (hosting.Gateway, error) {
	reg := hosting.NewRegistry()
	reg.Register(api.New(cfg.GitHub.Token))
	reg.Register(ghcli.New())

	gw, err := reg.Get(string(cfg.GitHub.Binding))
	if err != nil {
		return nil, fmt.Errorf("selecting hosting binding: %w", err)
	}
	return gw, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("GET /runs", s.handleRuns)
	s.mux.HandleFunc("GET /events", s.hub.HandleWS)
	s.mux.HandleFunc("POST /webhook/github", s.handleWebhook)
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("starting HTTP server", "addr", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	// Let in-flight runs finish before tearing down the store.
	s.dispatcher.Wait()
	if s.store != nil {
		s.store.Close()
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	RunCount int    `json:"run_count"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count := 0
	if s.store != nil {
		if n, err := s.store.Count(); err == nil {
			count = n
		}
	}

	resp := StatusResponse{
		Status:   "running",
		Uptime:   time.Since(s.startTime).Round(time.Second).String(),
		RunCount: count,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "run history not configured", http.StatusNotFound)
		return
	}

	runs, err := s.store.Recent(50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}
