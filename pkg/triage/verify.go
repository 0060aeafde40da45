package triage

import (
	"fmt"

	"github.com/helpflow/triago/pkg/models"
)

const (
	// highPriorityConfidenceFloor is the minimum confidence an automated
	// resolution of a high or urgent ticket must carry to avoid escalation.
	highPriorityConfidenceFloor = 0.9

	// divergentClusterLimit is the number of divergent similar-solution
	// clusters above which the analysis is considered too ambiguous.
	divergentClusterLimit = 3
)

// Verify re-assesses an attempted resolution. When no resolve action
// succeeded there is nothing to verify and the result is vacuously
// successful. The caller gives the verification outcome override authority
// over the apparent execution outcome.
func Verify(ticket *models.Ticket, analysis *models.AnalysisResult, results []models.ExecutionResult, cfg models.TriageConfig) models.VerificationResult {
	if !resolveSucceeded(results) {
		return models.VerificationResult{
			Outcome:         models.VerificationSuccess,
			Confidence:      analysis.OverallConfidence,
			NeedsEscalation: false,
			Notes:           "no successful resolution to verify",
		}
	}

	confidence := analysis.OverallConfidence
	needsEscalation, reason := shouldEscalate(ticket, analysis, results, cfg)

	verification := models.VerificationResult{
		Confidence:      confidence,
		NeedsEscalation: needsEscalation,
		Notes:           reason,
	}

	switch {
	case needsEscalation:
		verification.Outcome = models.VerificationEscalated
	case confidence >= cfg.VerificationThreshold:
		verification.Outcome = models.VerificationSuccess
	case confidence >= cfg.ConfidenceThreshold:
		verification.Outcome = models.VerificationNeeded
		verification.Notes = "confidence below verification threshold, flagging for follow-up"
	default:
		verification.Outcome = models.VerificationFailed
		verification.NeedsEscalation = true
		verification.Notes = "confidence below resolution threshold after execution"
	}

	return verification
}

// shouldEscalate applies the escalation rules in order and reports the first
// one that trips.
func shouldEscalate(ticket *models.Ticket, analysis *models.AnalysisResult, results []models.ExecutionResult, cfg models.TriageConfig) (bool, string) {
	confidence := analysis.OverallConfidence

	if confidence < cfg.ConfidenceThreshold {
		return true, fmt.Sprintf("confidence %.2f below threshold %.2f", confidence, cfg.ConfidenceThreshold)
	}

	highPriority := ticket.Priority == models.TicketPriorityHigh || ticket.Priority == models.TicketPriorityUrgent
	if highPriority && confidence < highPriorityConfidenceFloor {
		return true, fmt.Sprintf("%s priority ticket resolved with confidence %.2f", ticket.Priority, confidence)
	}

	failed := 0
	for _, result := range results {
		if result.Status == models.ExecutionFailed {
			failed++
		}
	}

	if failed*2 > len(results) {
		return true, fmt.Sprintf("%d of %d planned actions failed", failed, len(results))
	}

	if analysis.Patterns.SolutionClusters > divergentClusterLimit {
		return true, fmt.Sprintf("similar tickets diverge into %d solution clusters", analysis.Patterns.SolutionClusters)
	}

	return false, ""
}

func resolveSucceeded(results []models.ExecutionResult) bool {
	for _, result := range results {
		if result.Type == models.ActionResolveTicket && result.Status == models.ExecutionSuccess {
			return true
		}
	}

	return false
}

func escalateSucceeded(results []models.ExecutionResult) bool {
	for _, result := range results {
		if result.Type == models.ActionEscalateTicket && result.Status == models.ExecutionSuccess {
			return true
		}
	}

	return false
}
