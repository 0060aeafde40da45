// Package models defines the core domain models for automated support ticket triage.
package models

import "time"

// TicketStatus represents the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusProcessing TicketStatus = "processing"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusEscalated  TicketStatus = "escalated"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority represents the urgency of a support ticket.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Ticket represents a support ticket. The triage pipeline never mutates a
// ticket directly; every status change goes through an executed action.
type Ticket struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"                 validate:"required,min=3"`
	Description string          `json:"description"           validate:"required"`
	Category    string          `json:"category"`
	Priority    TicketPriority  `json:"priority"              validate:"required,oneof=low medium high urgent"`
	Status      TicketStatus    `json:"status"`
	Resolution  string          `json:"resolution,omitempty"`
	ResolvedBy  string          `json:"resolved_by,omitempty"`
	Confidence  float64         `json:"confidence,omitempty"  validate:"gte=0,lte=1"`
	Escalation  *EscalationInfo `json:"escalation,omitempty"`
	Requester   string          `json:"requester,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// EscalationInfo carries the metadata attached to a ticket when it is escalated.
type EscalationInfo struct {
	Reason      string    `json:"reason"`
	Context     string    `json:"context,omitempty"`
	EscalatedBy string    `json:"escalated_by"`
	EscalatedAt time.Time `json:"escalated_at"`
}
