package triage

import "github.com/helpflow/triago/pkg/models"

// FinalStatus computes the outcome reported for a workflow. Precedence, in
// order: a verification escalation overrides everything; a successful resolve
// action reports resolved unless verification failed outright, in which case
// the resolution is held back as processing; a successful escalate action
// reports escalated; anything else stays processing.
func FinalStatus(results []models.ExecutionResult, verification *models.VerificationResult) models.TicketStatus {
	if verification != nil && verification.NeedsEscalation {
		return models.TicketStatusEscalated
	}

	if resolveSucceeded(results) {
		if verification != nil && verification.Outcome == models.VerificationFailed {
			return models.TicketStatusProcessing
		}

		return models.TicketStatusResolved
	}

	if escalateSucceeded(results) {
		return models.TicketStatusEscalated
	}

	return models.TicketStatusProcessing
}

// FinalConfidence reports the verification confidence when a verification ran,
// and the analysis confidence otherwise. The same rule applies on every
// return path.
func FinalConfidence(analysis *models.AnalysisResult, verification *models.VerificationResult) float64 {
	if verification != nil {
		return verification.Confidence
	}

	return analysis.OverallConfidence
}
