package triage_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
	"github.com/helpflow/triago/pkg/registry"
	"github.com/helpflow/triago/pkg/triage"
)

type stubAction struct {
	payload map[string]any
	err     error
}

func (a *stubAction) Execute(_ context.Context, _ models.ExecutionContext, _ *slog.Logger) (map[string]any, error) {
	return a.payload, a.err
}

type stubFactory struct {
	actionType models.ActionType
	action     *stubAction
}

func (f *stubFactory) ID() models.ActionType {
	return f.actionType
}

func (f *stubFactory) Create(_ map[string]any) (protocol.Action, error) {
	return f.action, nil
}

func TestExecutor_OneResultPerAction(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	reg := registry.NewRegistry(logger)

	reg.RegisterAction(&stubFactory{
		actionType: models.ActionResolveTicket,
		action:     &stubAction{payload: map[string]any{"status": "resolved"}},
	})
	reg.RegisterAction(&stubFactory{
		actionType: models.ActionNotifyUser,
		action:     &stubAction{err: errors.New("delivery timed out")},
	})
	reg.RegisterAction(&stubFactory{
		actionType: models.ActionUpdateKBUsage,
		action:     &stubAction{payload: map[string]any{"updated": 1}},
	})

	executor := triage.NewExecutor(reg, logger)

	plan := []models.Action{
		{Type: models.ActionResolveTicket},
		{Type: models.ActionNotifyUser},
		{Type: models.ActionUpdateKBUsage},
	}

	results := executor.Run(context.Background(), models.ExecutionContext{WorkflowID: "wf-1"}, plan)

	require.Len(t, results, 3)

	assert.Equal(t, models.ActionResolveTicket, results[0].Type)
	assert.Equal(t, models.ExecutionSuccess, results[0].Status)
	assert.Equal(t, map[string]any{"status": "resolved"}, results[0].Result)

	assert.Equal(t, models.ActionNotifyUser, results[1].Type)
	assert.Equal(t, models.ExecutionFailed, results[1].Status)
	assert.Equal(t, "delivery timed out", results[1].Error)

	// The failure above must not stop the remaining actions.
	assert.Equal(t, models.ActionUpdateKBUsage, results[2].Type)
	assert.Equal(t, models.ExecutionSuccess, results[2].Status)
}

func TestExecutor_UnregisteredActionFails(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	executor := triage.NewExecutor(registry.NewRegistry(logger), logger)

	results := executor.Run(context.Background(), models.ExecutionContext{WorkflowID: "wf-1"}, []models.Action{
		{Type: models.ActionEscalateTicket},
	})

	require.Len(t, results, 1)
	assert.Equal(t, models.ExecutionFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "not registered")
}

func TestExecutor_EmptyPlan(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	executor := triage.NewExecutor(registry.NewRegistry(logger), logger)

	results := executor.Run(context.Background(), models.ExecutionContext{}, nil)

	assert.Empty(t, results)
}
