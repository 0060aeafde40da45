// Package resolveticket provides the action that marks a ticket resolved.
package resolveticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
)

// ErrResolutionRequired is returned when the action is created without a resolution text.
var ErrResolutionRequired = errors.New("resolve_ticket requires a 'resolution' parameter")

// Action marks the ticket under triage as resolved and stores the resolution.
// Resolving an already resolved ticket is a no-op reported in the result.
type Action struct {
	Resolution string
	ResolvedBy string
	Confidence float64

	tickets protocol.TicketStore
}

func NewAction(config map[string]any, tickets protocol.TicketStore) (*Action, error) {
	resolution, _ := config["resolution"].(string)
	if resolution == "" {
		return nil, ErrResolutionRequired
	}

	resolvedBy, _ := config["resolved_by"].(string)
	if resolvedBy == "" {
		resolvedBy = "triago"
	}

	confidence, _ := config["confidence"].(float64)

	return &Action{
		Resolution: resolution,
		ResolvedBy: resolvedBy,
		Confidence: confidence,
		tickets:    tickets,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", models.ActionResolveTicket)

	ticket := executionCtx.Ticket
	if ticket == nil {
		return nil, errors.New("execution context has no ticket")
	}

	if ticket.Status == models.TicketStatusResolved {
		logger.InfoContext(ctx, "Ticket already resolved, skipping", "ticket_id", ticket.ID)

		return map[string]any{
			"ticket_id":        ticket.ID,
			"already_resolved": true,
		}, nil
	}

	err := a.tickets.ResolveTicket(ctx, ticket.ID, a.Resolution, a.ResolvedBy, a.Confidence)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ticket %s: %w", ticket.ID, err)
	}

	logger.InfoContext(ctx, "Ticket resolved", "ticket_id", ticket.ID, "confidence", a.Confidence)

	return map[string]any{
		"ticket_id":   ticket.ID,
		"resolution":  a.Resolution,
		"resolved_by": a.ResolvedBy,
		"confidence":  a.Confidence,
	}, nil
}
