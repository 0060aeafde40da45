// Package protocol defines the contracts between the triage engine and its
// external collaborators.
package protocol

import (
	"context"

	"github.com/helpflow/triago/pkg/models"
)

// TicketStore owns ticket records. The engine mutates tickets only through
// these methods, driven by executed actions.
type TicketStore interface {
	CreateTicket(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)
	TicketByID(ctx context.Context, id string) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, ticket *models.Ticket) error
	ResolveTicket(ctx context.Context, id, resolution, resolvedBy string, confidence float64) error
	EscalateTicket(ctx context.Context, id string, escalation models.EscalationInfo) error
}

// SearchProvider retrieves previously resolved tickets similar to a query.
type SearchProvider interface {
	FindSimilarResolved(ctx context.Context, query, excludeID string, limit int) ([]models.SimilarTicket, error)
}

// KnowledgeBaseProvider searches knowledge base articles and records usage.
type KnowledgeBaseProvider interface {
	Search(ctx context.Context, query, category string, limit int) ([]models.KBArticle, error)
	RecordUsage(ctx context.Context, articleID string, wasHelpful bool) error
}

// AnalysisProvider runs the four LLM analysis sub-calls. Each call is
// independently fault-tolerant on the caller side: a failure is replaced by a
// fixed fallback payload rather than aborting the pipeline.
type AnalysisProvider interface {
	AnalyzePatterns(ctx context.Context, actx models.AnalysisContext) (models.PatternAnalysis, error)
	AnalyzeRootCause(ctx context.Context, actx models.AnalysisContext) (models.RootCauseAnalysis, error)
	GenerateSolution(ctx context.Context, actx models.AnalysisContext) (models.SolutionProposal, error)
	AssessConfidence(ctx context.Context, result models.AnalysisResult) (models.ConfidenceAssessment, error)
}

// DeliveryResult aggregates per-channel delivery status for one notification.
type DeliveryResult struct {
	Delivered bool              `json:"delivered"`
	Channels  map[string]string `json:"channels"`
}

// NotificationProvider delivers best-effort notifications. Partial channel
// failure is reported in the DeliveryResult, never as an error.
type NotificationProvider interface {
	NotifyUser(ctx context.Context, ticket *models.Ticket, message string) (DeliveryResult, error)
	NotifyTeam(ctx context.Context, team, message string, ticket *models.Ticket) (DeliveryResult, error)
}

// WorkflowStore persists workflow records and their append-only step logs.
type WorkflowStore interface {
	CreateWorkflow(ctx context.Context, workflow *models.Workflow) error
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	AppendStep(ctx context.Context, workflowID string, step models.StepRecord) error
	CompleteWorkflow(ctx context.Context, workflowID string, finalConfidence float64, totalDurationMs int64) error
	FailWorkflow(ctx context.Context, workflowID string) error
}

// MetricsStore persists the single learning metrics aggregate. LoadCurrent
// returns nil when no aggregate has been written yet.
type MetricsStore interface {
	LoadCurrent(ctx context.Context) (*models.LearningMetrics, error)
	Save(ctx context.Context, metrics *models.LearningMetrics) error
}
