package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/helpflow/triago/pkg/eventbus"
	"github.com/helpflow/triago/pkg/events"
	"github.com/helpflow/triago/pkg/janitor"
	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/otelhelper"
	"github.com/helpflow/triago/pkg/persistence"
	"github.com/helpflow/triago/pkg/sources/queue"
	"github.com/helpflow/triago/pkg/triage"
)

// WorkerManager wires the triage service to its intake channels: the event
// bus and the optional Redis queue.
type WorkerManager struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	service     *triage.Service
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	queueSource *queue.Source
	janitor     *janitor.Janitor
}

func NewWorkerManager(
	id string,
	persist persistence.Persistence,
	service *triage.Service,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
	queueSource *queue.Source,
	reaper *janitor.Janitor,
	logger *slog.Logger,
) *WorkerManager {
	return &WorkerManager{
		id:          id,
		logger:      logger.With("module", "triago-worker", "worker_id", id),
		persistence: persist,
		service:     service,
		eventBus:    eventBus,
		tracer:      tracer,
		queueSource: queueSource,
		janitor:     reaper,
	}
}

// Start subscribes to the event bus, starts the optional intake queue and the
// janitor, then blocks until a shutdown signal arrives.
func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager")

	err := w.eventBus.Handle(events.TicketReceivedEvent, w.handleTicketReceived)
	if err != nil {
		return err
	}

	err = w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	if w.queueSource != nil {
		err = w.queueSource.Start(ctx, w.handleQueuedTicket)
		if err != nil {
			return err
		}
	}

	if w.janitor != nil {
		err = w.janitor.Start(ctx, "")
		if err != nil {
			return err
		}
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(ctx, "Shutting down worker...")

	if w.queueSource != nil {
		err = w.queueSource.Stop(ctx)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to stop queue source", "error", err)
		}
	}

	if w.janitor != nil {
		err = w.janitor.Stop(ctx)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to stop janitor", "error", err)
		}
	}

	return nil
}

func (w *WorkerManager) handleTicketReceived(ctx context.Context, event any) error {
	receivedEvent, ok := event.(*events.TicketReceived)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for TicketReceived")

		return nil
	}

	logger := w.logger.With(
		"ticket_id", receivedEvent.TicketID,
		"event_id", receivedEvent.ID,
	)
	logger.InfoContext(ctx, "Processing ticket received event")

	go w.process(ctx, triage.ProcessInput{TicketID: receivedEvent.TicketID}, receivedEvent.ID)

	return nil
}

func (w *WorkerManager) handleQueuedTicket(ctx context.Context, ticket *models.Ticket) error {
	w.logger.InfoContext(ctx, "Processing queued ticket", "title", ticket.Title)

	w.process(ctx, triage.ProcessInput{Ticket: ticket}, "")

	return nil
}

// process runs one triage workflow and publishes its terminal event.
func (w *WorkerManager) process(ctx context.Context, input triage.ProcessInput, eventID string) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "triage.process",
		attribute.String(otelhelper.TicketIDKey, input.TicketID),
		attribute.String(otelhelper.EventIDKey, eventID),
		attribute.String(otelhelper.WorkerIDKey, w.id),
	)
	defer span.End()

	result := w.service.Process(ctx, input)

	span.SetAttributes(
		attribute.String(otelhelper.WorkflowIDKey, result.WorkflowID),
		attribute.String(otelhelper.DecisionKey, string(result.FinalStatus)),
	)

	if !result.Success {
		otelhelper.SetError(span, errProcessingFailed(result.Error))

		failedEvent := events.WorkflowFailed{
			BaseEvent:  events.NewBaseEvent(events.WorkflowFailedEvent, result.TicketID),
			WorkflowID: result.WorkflowID,
			Error:      result.Error,
		}
		failedEvent.WorkerID = w.id

		w.publish(ctx, result.TicketID, failedEvent)

		return
	}

	completedEvent := events.WorkflowCompleted{
		BaseEvent:   events.NewBaseEvent(events.WorkflowCompletedEvent, result.TicketID),
		WorkflowID:  result.WorkflowID,
		FinalStatus: result.FinalStatus,
		Confidence:  result.Confidence,
		DurationMs:  result.DurationMs,
	}
	completedEvent.WorkerID = w.id

	w.publish(ctx, result.TicketID, completedEvent)
}

func errProcessingFailed(message string) error {
	return errors.New("triage processing failed: " + message)
}

func (w *WorkerManager) publish(ctx context.Context, key string, event eventbus.Event) {
	err := w.eventBus.Publish(ctx, key, event)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish workflow event", "error", err, "event_type", event.GetType())
	}
}
