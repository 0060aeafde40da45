// Package escalateticket provides the action that hands a ticket to a human queue.
package escalateticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
)

// ErrReasonRequired is returned when the action is created without a reason.
var ErrReasonRequired = errors.New("escalate_ticket requires a 'reason' parameter")

// Action marks the ticket as escalated and attaches escalation metadata.
type Action struct {
	Reason            string
	Context           string
	SuggestedPriority models.TicketPriority
	EscalatedBy       string

	tickets protocol.TicketStore
}

func NewAction(config map[string]any, tickets protocol.TicketStore) (*Action, error) {
	reason, _ := config["reason"].(string)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	contextText, _ := config["context"].(string)

	priority, _ := config["suggested_priority"].(string)
	if priority == "" {
		priority, _ = config["priority"].(string)
	}

	escalatedBy, _ := config["escalated_by"].(string)
	if escalatedBy == "" {
		escalatedBy = "triago"
	}

	return &Action{
		Reason:            reason,
		Context:           contextText,
		SuggestedPriority: models.TicketPriority(priority),
		EscalatedBy:       escalatedBy,
		tickets:           tickets,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", models.ActionEscalateTicket)

	ticket := executionCtx.Ticket
	if ticket == nil {
		return nil, errors.New("execution context has no ticket")
	}

	escalation := models.EscalationInfo{
		Reason:      a.Reason,
		Context:     a.Context,
		EscalatedBy: a.EscalatedBy,
		EscalatedAt: time.Now().UTC(),
	}

	err := a.tickets.EscalateTicket(ctx, ticket.ID, escalation)
	if err != nil {
		return nil, fmt.Errorf("failed to escalate ticket %s: %w", ticket.ID, err)
	}

	logger.InfoContext(ctx, "Ticket escalated", "ticket_id", ticket.ID, "reason", a.Reason)

	result := map[string]any{
		"ticket_id": ticket.ID,
		"reason":    a.Reason,
	}
	if a.SuggestedPriority != "" {
		result["suggested_priority"] = string(a.SuggestedPriority)
	}

	return result, nil
}
