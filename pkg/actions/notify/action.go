// Package notify provides the best-effort user and team notification actions.
//
// Delivery problems are reported inside the action result, never as an
// executor-level failure.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
)

// ErrMessageRequired is returned when a notify action is created without a message.
var ErrMessageRequired = errors.New("notify action requires a 'message' parameter")

// UserAction notifies the ticket requester.
type UserAction struct {
	Message    string
	Resolution string

	notifier protocol.NotificationProvider
}

func NewUserAction(config map[string]any, notifier protocol.NotificationProvider) (*UserAction, error) {
	message, _ := config["message"].(string)
	if message == "" {
		return nil, ErrMessageRequired
	}

	resolution, _ := config["resolution"].(string)

	return &UserAction{
		Message:    message,
		Resolution: resolution,
		notifier:   notifier,
	}, nil
}

func (a *UserAction) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", models.ActionNotifyUser)

	ticket := executionCtx.Ticket
	if ticket == nil {
		return nil, errors.New("execution context has no ticket")
	}

	message := a.Message
	if a.Resolution != "" {
		message += "\n\nResolution:\n" + a.Resolution
	}

	delivery, err := a.notifier.NotifyUser(ctx, ticket, message)
	if err != nil {
		logger.WarnContext(ctx, "User notification failed", "ticket_id", ticket.ID, "error", err)

		return map[string]any{
			"ticket_id": ticket.ID,
			"delivered": false,
			"error":     err.Error(),
		}, nil
	}

	logger.InfoContext(ctx, "User notified", "ticket_id", ticket.ID, "delivered", delivery.Delivered)

	return map[string]any{
		"ticket_id": ticket.ID,
		"delivered": delivery.Delivered,
		"channels":  delivery.Channels,
	}, nil
}

// TeamAction notifies a support team channel.
type TeamAction struct {
	Team           string
	Message        string
	ContextSummary string

	notifier protocol.NotificationProvider
}

func NewTeamAction(config map[string]any, notifier protocol.NotificationProvider) (*TeamAction, error) {
	message, _ := config["message"].(string)
	if message == "" {
		return nil, ErrMessageRequired
	}

	team, _ := config["team"].(string)
	if team == "" {
		team = "support"
	}

	contextSummary, _ := config["context_summary"].(string)

	return &TeamAction{
		Team:           team,
		Message:        message,
		ContextSummary: contextSummary,
		notifier:       notifier,
	}, nil
}

func (a *TeamAction) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", models.ActionNotifyTeam, "team", a.Team)

	ticket := executionCtx.Ticket
	if ticket == nil {
		return nil, errors.New("execution context has no ticket")
	}

	message := a.Message
	if a.ContextSummary != "" {
		message += "\n\nContext:\n" + a.ContextSummary
	}

	delivery, err := a.notifier.NotifyTeam(ctx, a.Team, message, ticket)
	if err != nil {
		logger.WarnContext(ctx, "Team notification failed", "ticket_id", ticket.ID, "error", err)

		return map[string]any{
			"ticket_id": ticket.ID,
			"team":      a.Team,
			"delivered": false,
			"error":     err.Error(),
		}, nil
	}

	logger.InfoContext(ctx, "Team notified", "ticket_id", ticket.ID, "delivered", delivery.Delivered)

	return map[string]any{
		"ticket_id": ticket.ID,
		"team":      a.Team,
		"delivered": delivery.Delivered,
		"channels":  delivery.Channels,
	}, nil
}
