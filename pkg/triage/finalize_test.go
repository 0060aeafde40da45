package triage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/triage"
)

func TestFinalStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		results      []models.ExecutionResult
		verification *models.VerificationResult
		expected     models.TicketStatus
	}{
		{
			name: "verification escalation overrides a successful resolution",
			results: []models.ExecutionResult{
				successResult(models.ActionResolveTicket),
			},
			verification: &models.VerificationResult{
				Outcome:         models.VerificationEscalated,
				NeedsEscalation: true,
			},
			expected: models.TicketStatusEscalated,
		},
		{
			name: "successful resolution reports resolved",
			results: []models.ExecutionResult{
				successResult(models.ActionResolveTicket),
				successResult(models.ActionNotifyUser),
			},
			verification: &models.VerificationResult{Outcome: models.VerificationSuccess},
			expected:     models.TicketStatusResolved,
		},
		{
			name: "failed verification holds the resolution back",
			results: []models.ExecutionResult{
				successResult(models.ActionResolveTicket),
			},
			verification: &models.VerificationResult{Outcome: models.VerificationFailed},
			expected:     models.TicketStatusProcessing,
		},
		{
			name: "resolution without verification reports resolved",
			results: []models.ExecutionResult{
				successResult(models.ActionResolveTicket),
			},
			verification: nil,
			expected:     models.TicketStatusResolved,
		},
		{
			name: "successful escalation reports escalated",
			results: []models.ExecutionResult{
				successResult(models.ActionEscalateTicket),
				successResult(models.ActionNotifyTeam),
			},
			verification: nil,
			expected:     models.TicketStatusEscalated,
		},
		{
			name: "no terminal action leaves the ticket processing",
			results: []models.ExecutionResult{
				failedResult(models.ActionResolveTicket),
				successResult(models.ActionNotifyUser),
			},
			verification: nil,
			expected:     models.TicketStatusProcessing,
		},
		{
			name:         "empty plan leaves the ticket processing",
			results:      nil,
			verification: nil,
			expected:     models.TicketStatusProcessing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, triage.FinalStatus(tt.results, tt.verification))
		})
	}
}

func TestFinalConfidence(t *testing.T) {
	t.Parallel()

	analysis := &models.AnalysisResult{OverallConfidence: 0.8}

	assert.InDelta(t, 0.8, triage.FinalConfidence(analysis, nil), 0.0001)

	verification := &models.VerificationResult{Confidence: 0.65}
	assert.InDelta(t, 0.65, triage.FinalConfidence(analysis, verification), 0.0001)
}
