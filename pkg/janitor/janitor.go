// Package janitor reaps workflows that were abandoned mid-run, usually after
// a worker crash. A workflow still running past the processing budget plus a
// grace period is closed as failed.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultSchedule = "@every 1m"

// graceMultiplier pads the processing budget before a running workflow is
// considered abandoned rather than merely slow.
const graceMultiplier = 2

// WorkflowReaper is the persistence surface the janitor needs.
type WorkflowReaper interface {
	StuckWorkflowIDs(ctx context.Context, startedBefore time.Time) ([]string, error)
	FailWorkflow(ctx context.Context, workflowID string) error
}

// Janitor periodically fails workflows stuck past the processing budget.
type Janitor struct {
	workflows WorkflowReaper
	budget    time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewJanitor creates a janitor for the given processing budget.
func NewJanitor(workflows WorkflowReaper, budget time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		workflows: workflows,
		budget:    budget,
		cron:      cron.New(),
		logger:    logger.With("module", "janitor"),
	}
}

// Start schedules the reaper. An empty schedule uses the default.
func (j *Janitor) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = defaultSchedule
	}

	_, err := j.cron.AddFunc(schedule, func() {
		j.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(ctx, "Janitor started", "schedule", schedule, "budget", j.budget)

	return nil
}

// Sweep fails every workflow stuck past the budget. Failures to reap a single
// workflow are logged and skipped.
func (j *Janitor) Sweep(ctx context.Context) {
	deadline := time.Now().UTC().Add(-graceMultiplier * j.budget)

	ids, err := j.workflows.StuckWorkflowIDs(ctx, deadline)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list stuck workflows", "error", err)

		return
	}

	for _, id := range ids {
		err = j.workflows.FailWorkflow(ctx, id)
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed to reap workflow", "workflow_id", id, "error", err)

			continue
		}

		j.logger.WarnContext(ctx, "Reaped stuck workflow", "workflow_id", id)
	}
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop(ctx context.Context) error {
	stopCtx := j.cron.Stop()

	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	j.logger.InfoContext(ctx, "Janitor stopped")

	return nil
}
