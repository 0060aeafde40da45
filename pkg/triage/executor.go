package triage

import (
	"context"
	"log/slog"
	"time"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/registry"
)

// Executor runs a decision's action plan. Every planned action produces
// exactly one ExecutionResult; a failing action never short-circuits its
// siblings.
type Executor struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func NewExecutor(reg *registry.Registry, logger *slog.Logger) *Executor {
	return &Executor{
		registry: reg,
		logger:   logger.With("module", "action_executor"),
	}
}

// Run executes the plan in order and returns one result per planned action.
func (e *Executor) Run(ctx context.Context, executionCtx models.ExecutionContext, plan []models.Action) []models.ExecutionResult {
	results := make([]models.ExecutionResult, 0, len(plan))

	for _, planned := range plan {
		results = append(results, e.runOne(ctx, executionCtx, planned))
	}

	return results
}

func (e *Executor) runOne(ctx context.Context, executionCtx models.ExecutionContext, planned models.Action) models.ExecutionResult {
	logger := e.logger.With(
		"workflow_id", executionCtx.WorkflowID,
		"action_type", planned.Type,
	)

	result := models.ExecutionResult{
		Type:      planned.Type,
		Timestamp: time.Now().UTC(),
	}

	action, err := e.registry.CreateAction(planned.Type, planned.Parameters)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create action", "error", err)

		result.Status = models.ExecutionFailed
		result.Error = err.Error()

		return result
	}

	payload, err := action.Execute(ctx, executionCtx, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Action failed", "error", err)

		result.Status = models.ExecutionFailed
		result.Error = err.Error()

		return result
	}

	result.Status = models.ExecutionSuccess
	result.Result = payload

	return result
}
