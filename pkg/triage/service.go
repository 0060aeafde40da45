// Package triage implements the staged workflow engine that turns an incoming
// support ticket into a resolution, an escalation, or a request for review.
package triage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/helpflow/triago/pkg/metrics"
	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
	"github.com/helpflow/triago/pkg/registry"
)

var (
	// ErrNoTicketInput is returned when a process request carries neither a
	// ticket id nor ticket fields.
	ErrNoTicketInput = errors.New("process input requires a ticket id or ticket fields")
	// ErrTicketNotFound is returned when the referenced ticket does not exist.
	ErrTicketNotFound = errors.New("ticket not found")
)

// Dependencies are the collaborators the triage service drives.
type Dependencies struct {
	Tickets       protocol.TicketStore
	Search        protocol.SearchProvider
	KnowledgeBase protocol.KnowledgeBaseProvider
	Analysis      protocol.AnalysisProvider
	Workflows     protocol.WorkflowStore
	Registry      *registry.Registry
	Learning      *metrics.Accumulator
	Observability *Metrics
}

// Service drives the triage pipeline: INGEST, SEARCH_SIMILAR, SEARCH_KB,
// ANALYZE, DECIDE, EXECUTE, optional VERIFY, FINALIZE. Stages run strictly in
// order within one workflow; many workflows may run concurrently.
type Service struct {
	cfg       models.TriageConfig
	tickets   protocol.TicketStore
	search    protocol.SearchProvider
	kb        protocol.KnowledgeBaseProvider
	workflows protocol.WorkflowStore
	analyzer  *Analyzer
	executor  *Executor
	learning  *metrics.Accumulator
	obs       *Metrics
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewService(cfg models.TriageConfig, deps Dependencies, logger *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		tickets:   deps.Tickets,
		search:    deps.Search,
		kb:        deps.KnowledgeBase,
		workflows: deps.Workflows,
		analyzer:  NewAnalyzer(deps.Analysis, logger),
		executor:  NewExecutor(deps.Registry, logger),
		learning:  deps.Learning,
		obs:       deps.Observability,
		validate:  validator.New(),
		logger:    logger.With("module", "triage_service"),
	}
}

// ProcessInput identifies the ticket to triage: an existing ticket by id, or
// the fields of a new one.
type ProcessInput struct {
	TicketID string
	Ticket   *models.Ticket
}

// ProcessResult is the structured outcome of one processing attempt. Process
// never panics or returns an error past this boundary.
type ProcessResult struct {
	Success     bool                     `json:"success"`
	TicketID    string                   `json:"ticket_id,omitempty"`
	WorkflowID  string                   `json:"workflow_id,omitempty"`
	FinalStatus models.TicketStatus      `json:"final_status,omitempty"`
	Confidence  float64                  `json:"confidence,omitempty"`
	Resolution  string                   `json:"resolution,omitempty"`
	DurationMs  int64                    `json:"duration_ms,omitempty"`
	Actions     []models.ExecutionResult `json:"actions,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

// Process runs the full triage pipeline for one ticket under the configured
// processing budget. A stage error fails the workflow; action failures and
// analysis sub-call failures are absorbed locally.
func (s *Service) Process(ctx context.Context, input ProcessInput) ProcessResult {
	ticket, created, err := s.resolveTicket(ctx, input)
	if err != nil {
		return ProcessResult{Success: false, TicketID: input.TicketID, Error: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.MaxProcessingTime)
	defer cancel()

	started := time.Now()
	workflow := &models.Workflow{
		ID:        newWorkflowID(),
		TicketID:  ticket.ID,
		Status:    models.WorkflowStatusRunning,
		StartedAt: started.UTC(),
	}

	logger := s.logger.With("workflow_id", workflow.ID, "ticket_id", ticket.ID)
	logger.InfoContext(ctx, "Starting triage workflow", "priority", ticket.Priority)

	err = s.workflows.CreateWorkflow(ctx, workflow)
	if err != nil {
		s.obs.observeWorkflow(string(models.WorkflowStatusFailed), time.Since(started).Seconds())

		return ProcessResult{
			Success:  false,
			TicketID: ticket.ID,
			Error:    fmt.Sprintf("failed to create workflow: %v", err),
		}
	}

	// INGEST
	err = s.runStage(ctx, workflow.ID, models.StepIngest, logger, func(_ context.Context) (models.StepData, string, error) {
		return models.IngestData{
			TicketID: ticket.ID,
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Created:  created,
		}, "ticket ingested", nil
	})
	if err != nil {
		return s.failureResult(ticket.ID, workflow.ID, err)
	}

	query := buildSearchQuery(ticket)

	// SEARCH_SIMILAR
	var similar []models.SimilarTicket

	err = s.runStage(ctx, workflow.ID, models.StepSearchSimilar, logger, func(ctx context.Context) (models.StepData, string, error) {
		found, err := s.search.FindSimilarResolved(ctx, query, ticket.ID, s.cfg.SearchLimit)
		if err != nil {
			return nil, "", fmt.Errorf("similar ticket search failed: %w", err)
		}

		similar = found

		data := models.SimilarSearchData{Query: query, Matches: len(found)}
		for _, match := range found {
			data.TicketIDs = append(data.TicketIDs, match.TicketID)
			if match.SimilarityScore > data.TopScore {
				data.TopScore = match.SimilarityScore
			}
		}

		return data, fmt.Sprintf("found %d similar resolved tickets", len(found)), nil
	})
	if err != nil {
		return s.failureResult(ticket.ID, workflow.ID, err)
	}

	// SEARCH_KB
	var articles []models.KBArticle

	err = s.runStage(ctx, workflow.ID, models.StepSearchKB, logger, func(ctx context.Context) (models.StepData, string, error) {
		found, err := s.kb.Search(ctx, query, ticket.Category, s.cfg.SearchLimit)
		if err != nil {
			return nil, "", fmt.Errorf("knowledge base search failed: %w", err)
		}

		articles = found

		data := models.KBSearchData{Query: query, Matches: len(found)}
		for _, article := range found {
			data.ArticleIDs = append(data.ArticleIDs, article.ArticleID)
		}

		return data, fmt.Sprintf("found %d knowledge base articles", len(found)), nil
	})
	if err != nil {
		return s.failureResult(ticket.ID, workflow.ID, err)
	}

	// ANALYZE
	var analysis *models.AnalysisResult

	err = s.runStage(ctx, workflow.ID, models.StepAnalyze, logger, func(ctx context.Context) (models.StepData, string, error) {
		if err := ctx.Err(); err != nil {
			return nil, "", fmt.Errorf("processing budget exhausted before analysis: %w", err)
		}

		analysis = s.analyzer.Analyze(ctx, models.AnalysisContext{
			Ticket:         ticket,
			SimilarTickets: similar,
			KBArticles:     articles,
		})
		s.obs.observeFallbacks(analysis.Fallbacks)

		return models.AnalyzeData{
			OverallConfidence: analysis.OverallConfidence,
			RootCause:         analysis.RootCause.RootCause,
			SolutionClusters:  analysis.Patterns.SolutionClusters,
			Fallbacks:         analysis.Fallbacks,
		}, fmt.Sprintf("analysis complete with confidence %.2f", analysis.OverallConfidence), nil
	})
	if err != nil {
		return s.failureResult(ticket.ID, workflow.ID, err)
	}

	// DECIDE
	var decision models.Decision

	err = s.runStage(ctx, workflow.ID, models.StepDecide, logger, func(_ context.Context) (models.StepData, string, error) {
		decision = NewDecision(ticket, analysis, s.cfg)

		planned := make([]models.ActionType, 0, len(decision.Actions))
		for _, action := range decision.Actions {
			planned = append(planned, action.Type)
		}

		return models.DecideData{
			Primary:        decision.Primary,
			Confidence:     decision.Confidence,
			PlannedActions: planned,
		}, decision.Reasoning, nil
	})
	if err != nil {
		return s.failureResult(ticket.ID, workflow.ID, err)
	}

	// EXECUTE
	var results []models.ExecutionResult

	err = s.runStage(ctx, workflow.ID, models.StepExecute, logger, func(ctx context.Context) (models.StepData, string, error) {
		if err := ctx.Err(); err != nil {
			return nil, "", fmt.Errorf("processing budget exhausted before execution: %w", err)
		}

		executionCtx := models.ExecutionContext{
			WorkflowID: workflow.ID,
			Ticket:     ticket,
			Analysis:   analysis,
			Decision:   &decision,
		}

		results = s.executor.Run(ctx, executionCtx, decision.Actions)

		failed := 0
		for _, result := range results {
			s.obs.observeAction(string(result.Type), string(result.Status))

			if result.Status == models.ExecutionFailed {
				failed++
			}
		}

		return models.ExecuteData{Results: results, Failed: failed},
			fmt.Sprintf("executed %d actions, %d failed", len(results), failed), nil
	})
	if err != nil {
		return s.failureResult(ticket.ID, workflow.ID, err)
	}

	// VERIFY (skipped entirely when disabled)
	var verification *models.VerificationResult

	if s.cfg.EnableVerification {
		err = s.runStage(ctx, workflow.ID, models.StepVerify, logger, func(_ context.Context) (models.StepData, string, error) {
			v := Verify(ticket, analysis, results, s.cfg)
			verification = &v

			return models.VerifyData{
				Outcome:         v.Outcome,
				Confidence:      v.Confidence,
				NeedsEscalation: v.NeedsEscalation,
				Notes:           v.Notes,
			}, fmt.Sprintf("verification outcome: %s", v.Outcome), nil
		})
		if err != nil {
			return s.failureResult(ticket.ID, workflow.ID, err)
		}
	}

	// FINALIZE
	finalStatus := FinalStatus(results, verification)
	finalConfidence := FinalConfidence(analysis, verification)
	totalDuration := time.Since(started)

	err = s.runStage(ctx, workflow.ID, models.StepFinalize, logger, func(ctx context.Context) (models.StepData, string, error) {
		err := s.learning.RecordOutcome(ctx, metrics.Outcome{
			FinalStatus:     finalStatus,
			FinalConfidence: finalConfidence,
			Verification:    verification,
		})
		if err != nil {
			return nil, "", err
		}

		return models.FinalizeData{
			FinalStatus:     finalStatus,
			FinalConfidence: finalConfidence,
			TotalDurationMs: totalDuration.Milliseconds(),
		}, fmt.Sprintf("workflow finalized with status %s", finalStatus), nil
	})
	if err != nil {
		return s.failureResult(ticket.ID, workflow.ID, err)
	}

	err = s.workflows.CompleteWorkflow(ctx, workflow.ID, finalConfidence, totalDuration.Milliseconds())
	if err != nil {
		s.failWorkflow(ctx, workflow.ID, models.StepFinalize, logger, err)

		return s.failureResult(ticket.ID, workflow.ID, err)
	}

	s.obs.observeWorkflow(string(finalStatus), totalDuration.Seconds())
	logger.InfoContext(ctx, "Triage workflow completed",
		"final_status", finalStatus,
		"confidence", finalConfidence,
		"duration_ms", totalDuration.Milliseconds(),
	)

	result := ProcessResult{
		Success:     true,
		TicketID:    ticket.ID,
		WorkflowID:  workflow.ID,
		FinalStatus: finalStatus,
		Confidence:  finalConfidence,
		DurationMs:  totalDuration.Milliseconds(),
		Actions:     results,
	}
	if finalStatus == models.TicketStatusResolved {
		result.Resolution = analysis.Solution.Resolution
	}

	return result
}

// resolveTicket loads the referenced ticket or creates a new one. Failures
// here are validation errors: they surface immediately and no workflow is
// created.
func (s *Service) resolveTicket(ctx context.Context, input ProcessInput) (*models.Ticket, bool, error) {
	if input.TicketID != "" {
		ticket, err := s.tickets.TicketByID(ctx, input.TicketID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load ticket %s: %w", input.TicketID, err)
		}

		if ticket == nil {
			return nil, false, fmt.Errorf("%w: %s", ErrTicketNotFound, input.TicketID)
		}

		return ticket, false, nil
	}

	if input.Ticket == nil {
		return nil, false, ErrNoTicketInput
	}

	err := s.validate.Struct(input.Ticket)
	if err != nil {
		return nil, false, fmt.Errorf("invalid ticket: %w", err)
	}

	ticket := *input.Ticket
	ticket.Status = models.TicketStatusNew

	created, err := s.tickets.CreateTicket(ctx, &ticket)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create ticket: %w", err)
	}

	return created, true, nil
}

type stageFunc func(ctx context.Context) (models.StepData, string, error)

// runStage measures one stage, appends its StepRecord, and converts any error
// into a terminal workflow failure.
func (s *Service) runStage(ctx context.Context, workflowID string, name models.StepName, logger *slog.Logger, fn stageFunc) error {
	stageStart := time.Now()
	data, message, err := fn(ctx)
	duration := time.Since(stageStart)

	s.obs.observeStage(string(name), duration.Seconds())

	if err != nil {
		logger.ErrorContext(ctx, "Stage failed", "stage", name, "error", err)
		s.failWorkflow(ctx, workflowID, name, logger, err)

		return err
	}

	step := models.StepRecord{
		Name:       name,
		Status:     models.StepStatusCompleted,
		Message:    message,
		Data:       data,
		DurationMs: duration.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}

	err = s.workflows.AppendStep(ctx, workflowID, step)
	if err != nil {
		err = fmt.Errorf("failed to append %s step: %w", name, err)
		s.failWorkflow(ctx, workflowID, name, logger, err)

		return err
	}

	logger.DebugContext(ctx, "Stage completed", "stage", name, "duration_ms", duration.Milliseconds())

	return nil
}

// failWorkflow appends the error step and marks the workflow failed. Both
// writes are best effort; the original stage error is what the caller reports.
func (s *Service) failWorkflow(ctx context.Context, workflowID string, stage models.StepName, logger *slog.Logger, stageErr error) {
	// The stage context may already be past its deadline.
	ctx = context.WithoutCancel(ctx)

	step := models.StepRecord{
		Name:      models.StepError,
		Status:    models.StepStatusFailed,
		Message:   stageErr.Error(),
		Data:      models.ErrorData{Stage: stage, Error: stageErr.Error()},
		Timestamp: time.Now().UTC(),
	}

	err := s.workflows.AppendStep(ctx, workflowID, step)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to append error step", "error", err)
	}

	err = s.workflows.FailWorkflow(ctx, workflowID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to mark workflow failed", "error", err)
	}

	s.obs.observeWorkflow(string(models.WorkflowStatusFailed), 0)
}

func (s *Service) failureResult(ticketID, workflowID string, err error) ProcessResult {
	return ProcessResult{
		Success:    false,
		TicketID:   ticketID,
		WorkflowID: workflowID,
		Error:      err.Error(),
	}
}

// Feedback forwards a feedback submission to the learning accumulator.
func (s *Service) Feedback(ctx context.Context, feedback models.Feedback) error {
	err := s.validate.Struct(feedback)
	if err != nil {
		return fmt.Errorf("invalid feedback: %w", err)
	}

	return s.learning.RecordFeedback(ctx, feedback)
}

// LearningMetrics returns the current learning aggregate.
func (s *Service) LearningMetrics(ctx context.Context) (*models.LearningMetrics, error) {
	return s.learning.Snapshot(ctx)
}

func buildSearchQuery(ticket *models.Ticket) string {
	return strings.TrimSpace(ticket.Title + "\n" + ticket.Description)
}

func newWorkflowID() string {
	return "wf-" + uuid.New().String()[:8]
}
