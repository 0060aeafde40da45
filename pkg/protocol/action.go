package protocol

import (
	"context"
	"log/slog"

	"github.com/helpflow/triago/pkg/models"
)

// Action is one executable side effect planned by the decision policy.
type Action interface {
	Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory creates actions of one type from plan parameters.
type ActionFactory interface {
	Create(config map[string]any) (Action, error)
	ID() models.ActionType
}
