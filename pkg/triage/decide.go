package triage

import (
	"fmt"

	"github.com/helpflow/triago/pkg/models"
)

// contextEscalationFloor is the confidence above which an escalation still
// carries the analysis context for the receiving engineer.
const contextEscalationFloor = 0.6

// Decide maps an overall analysis confidence to a decision branch. It is a
// pure function; thresholds are inclusive at the boundary.
func Decide(confidence float64, cfg models.TriageConfig) models.PrimaryDecision {
	if confidence >= cfg.ConfidenceThreshold && cfg.EnableAutoResolution {
		return models.DecisionAutoResolve
	}

	if confidence >= contextEscalationFloor {
		return models.DecisionEscalateWithContext
	}

	return models.DecisionEscalateForReview
}

// NewDecision builds the full decision for a ticket: the branch chosen by
// Decide plus its deterministic, ordered action plan.
func NewDecision(ticket *models.Ticket, analysis *models.AnalysisResult, cfg models.TriageConfig) models.Decision {
	primary := Decide(analysis.OverallConfidence, cfg)

	decision := models.Decision{
		Primary:    primary,
		Confidence: analysis.OverallConfidence,
	}

	switch primary {
	case models.DecisionAutoResolve:
		decision.Reasoning = fmt.Sprintf(
			"confidence %.2f meets the auto-resolution threshold %.2f",
			analysis.OverallConfidence, cfg.ConfidenceThreshold)
		decision.Actions = autoResolvePlan(ticket, analysis, cfg)
	case models.DecisionEscalateWithContext:
		decision.Reasoning = fmt.Sprintf(
			"confidence %.2f is below the auto-resolution threshold %.2f but high enough to escalate with context",
			analysis.OverallConfidence, cfg.ConfidenceThreshold)
		decision.Actions = escalateWithContextPlan(ticket, analysis)
	case models.DecisionEscalateForReview:
		decision.Reasoning = fmt.Sprintf(
			"confidence %.2f is too low for automated handling, escalating for review",
			analysis.OverallConfidence)
		decision.Actions = escalateForReviewPlan(ticket, analysis)
	}

	return decision
}

func autoResolvePlan(ticket *models.Ticket, analysis *models.AnalysisResult, cfg models.TriageConfig) []models.Action {
	return []models.Action{
		{
			Type: models.ActionResolveTicket,
			Parameters: map[string]any{
				"resolution":  analysis.Solution.Resolution,
				"resolved_by": cfg.ResolvedBy,
				"confidence":  analysis.OverallConfidence,
			},
		},
		{
			Type: models.ActionNotifyUser,
			Parameters: map[string]any{
				"message":    fmt.Sprintf("Your ticket %q has been resolved automatically.", ticket.Title),
				"resolution": analysis.Solution.Resolution,
			},
		},
		{
			Type: models.ActionUpdateKBUsage,
			Parameters: map[string]any{
				"article_ids": analysis.Solution.ArticleIDs,
				"was_helpful": true,
			},
		},
	}
}

func escalateWithContextPlan(ticket *models.Ticket, analysis *models.AnalysisResult) []models.Action {
	suggestedPriority := models.TicketPriorityMedium
	if ticket.Priority == models.TicketPriorityHigh || ticket.Priority == models.TicketPriorityUrgent {
		suggestedPriority = models.TicketPriorityHigh
	}

	return []models.Action{
		{
			Type: models.ActionEscalateTicket,
			Parameters: map[string]any{
				"reason":             "automated analysis confidence below auto-resolution threshold",
				"context":            analysis.RootCause.RootCause,
				"suggested_priority": string(suggestedPriority),
			},
		},
		{
			Type: models.ActionNotifyTeam,
			Parameters: map[string]any{
				"team":            "support",
				"message":         fmt.Sprintf("Ticket %q escalated with analysis context.", ticket.Title),
				"context_summary": analysis.Patterns.Summary,
			},
		},
	}
}

func escalateForReviewPlan(ticket *models.Ticket, analysis *models.AnalysisResult) []models.Action {
	return []models.Action{
		{
			Type: models.ActionEscalateTicket,
			Parameters: map[string]any{
				"reason":   fmt.Sprintf("analysis confidence %.2f too low for automated handling", analysis.OverallConfidence),
				"priority": string(models.TicketPriorityHigh),
			},
		},
		{
			Type: models.ActionNotifyTeam,
			Parameters: map[string]any{
				"team":    "senior_support",
				"message": fmt.Sprintf("Ticket %q needs manual review.", ticket.Title),
			},
		},
	}
}
