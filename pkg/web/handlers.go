// Package web provides the HTTP handlers for the ticket intake and inspection API.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/helpflow/triago/pkg/eventbus"
	"github.com/helpflow/triago/pkg/events"
	"github.com/helpflow/triago/pkg/metrics"
	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/persistence"
	"github.com/helpflow/triago/pkg/registry"
)

type APIHandlers struct {
	persistence persistence.Persistence
	learning    *metrics.Accumulator
	validator   *validator.Validate
	registry    *registry.Registry
	eventBus    eventbus.EventBus
}

func NewAPIHandlers(
	persist persistence.Persistence,
	learning *metrics.Accumulator,
	validate *validator.Validate,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
) *APIHandlers {
	return &APIHandlers{
		persistence: persist,
		learning:    learning,
		validator:   validate,
		registry:    reg,
		eventBus:    eventBus,
	}
}

// CreateTicket accepts a new ticket and dispatches it for asynchronous triage.
func (h *APIHandlers) CreateTicket(c fiber.Ctx) error {
	var req CreateTicketRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	ticket := &models.Ticket{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    models.TicketPriority(req.Priority),
		Requester:   req.Requester,
	}

	ticket, err := h.persistence.TicketRepository().CreateTicket(c.Context(), ticket)
	if err != nil {
		return handleStoreError(c, err)
	}

	event := events.TicketReceived{
		BaseEvent: events.NewBaseEvent(events.TicketReceivedEvent, ticket.ID),
		Source:    "api",
	}

	err = h.eventBus.Publish(c.Context(), ticket.ID, event)
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(ticket)
}

// GetTicket returns a single ticket.
func (h *APIHandlers) GetTicket(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Ticket ID is required")
	}

	ticket, err := h.persistence.TicketRepository().TicketByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(ticket)
}

// GetWorkflow returns a workflow with its full step log.
func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(workflow)
}

// SubmitFeedback records a user's assessment of an automated resolution.
func (h *APIHandlers) SubmitFeedback(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Ticket ID is required")
	}

	var req FeedbackRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	err := h.learning.RecordFeedback(c.Context(), models.Feedback{
		TicketID:  id,
		Effective: req.Effective,
		Rating:    req.Rating,
		Text:      req.Text,
	})
	if err != nil {
		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetLearningMetrics returns the current learning aggregate.
func (h *APIHandlers) GetLearningMetrics(c fiber.Ctx) error {
	snapshot, err := h.learning.Snapshot(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(snapshot)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Triago API is healthy"
	httpStatus := http.StatusOK
	repository := "ok"

	err := h.persistence.HealthCheck(c.Context())
	if err != nil {
		status = "unhealthy"
		message = "Triago API is unhealthy"
		httpStatus = http.StatusInternalServerError
		repository = err.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repository,
			"actions":    h.registry.RegisteredActions(),
		},
		"timestamp": time.Now().UTC(),
	})
}
