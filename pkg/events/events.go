// Package events defines the event types exchanged between the intake
// boundary and the triage workers.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/helpflow/triago/pkg/models"
)

type EventType string

// Kafka topic for triage events.
const Topic = "triago.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	TicketReceivedEvent    EventType = "ticket.received"
	WorkflowCompletedEvent EventType = "workflow.completed"
	WorkflowFailedEvent    EventType = "workflow.failed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	TicketID  string         `json:"ticket_id"`
	WorkerID  string         `json:"worker_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TicketReceived dispatches one ticket for asynchronous triage.
type TicketReceived struct {
	BaseEvent

	Source string `json:"source,omitempty"`
}

func (t TicketReceived) GetType() EventType {
	return TicketReceivedEvent
}

// WorkflowCompleted reports a finished triage workflow.
type WorkflowCompleted struct {
	BaseEvent

	WorkflowID  string              `json:"workflow_id"`
	FinalStatus models.TicketStatus `json:"final_status"`
	Confidence  float64             `json:"confidence"`
	DurationMs  int64               `json:"duration_ms"`
}

func (w WorkflowCompleted) GetType() EventType {
	return WorkflowCompletedEvent
}

// WorkflowFailed reports a triage workflow that aborted on a stage error.
type WorkflowFailed struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
	Error      string `json:"error"`
}

func (w WorkflowFailed) GetType() EventType {
	return WorkflowFailedEvent
}

func NewBaseEvent(eventType EventType, ticketID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		TicketID:  ticketID,
		Metadata:  make(map[string]any),
	}
}
