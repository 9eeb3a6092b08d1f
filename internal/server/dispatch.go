package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/autoclaude/autoclaude/internal/history"
	"github.com/autoclaude/autoclaude/internal/orchestrator"
)

// Runner executes one work item to completion. Implemented by
// orchestrator.Orchestrator.
type Runner interface {
	Run(ctx context.Context, item orchestrator.WorkItem) orchestrator.Result
}

// Dispatcher launches runs in the background so the webhook handler can
// respond immediately. Run failures surface as posted comments and history
// rows, never as HTTP errors.
type Dispatcher struct {
	runner  Runner
	store   *history.Store // optional
	hub     *Hub           // optional
	baseCtx context.Context
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. store and hub may be nil.
func NewDispatcher(ctx context.Context, runner Runner, store *history.Store, hub *Hub) *Dispatcher {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Dispatcher{runner: runner, store: store, hub: hub, baseCtx: ctx}
}

// Dispatch starts a run in a new goroutine and returns immediately.
func (d *Dispatcher) Dispatch(item orchestrator.WorkItem, trigger string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("run panicked", "repo", item.Owner+"/"+item.Repo,
					"number", item.Number, "panic", r)
			}
		}()
		d.execute(item, trigger)
	}()
}

// Wait blocks until all dispatched runs have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) execute(item orchestrator.WorkItem, trigger string) {
	started := time.Now().UTC()

	if d.hub != nil {
		d.hub.Publish(Event{
			Type: "run_started", Owner: item.Owner, Repo: item.Repo,
			Number: item.Number, Trigger: trigger,
		})
	}

	result := d.runner.Run(d.baseCtx, item)
	finished := time.Now().UTC()

	prURL := ""
	if result.PR != nil {
		prURL = result.PR.URL
	}
	errText := ""
	if result.Err != nil {
		errText = result.Err.Error()
	}

	if d.store != nil {
		err := d.store.Record(history.Run{
			Owner:      item.Owner,
			Repo:       item.Repo,
			Number:     item.Number,
			Trigger:    trigger,
			Outcome:    string(result.Outcome),
			Branch:     result.Branch,
			PRURL:      prURL,
			Error:      errText,
			StartedAt:  started,
			FinishedAt: finished,
		})
		if err != nil {
			slog.Warn("failed to record run history", "error", err)
		}
	}

	if d.hub != nil {
		d.hub.Publish(Event{
			Type: "run_finished", Owner: item.Owner, Repo: item.Repo,
			Number: item.Number, Trigger: trigger,
			Outcome: string(result.Outcome), Branch: result.Branch, PRURL: prURL,
		})
	}
}
