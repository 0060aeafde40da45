package triage_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/triage"
)

var errProviderDown = errors.New("analysis provider unavailable")

type failingAnalysis struct{}

func (failingAnalysis) AnalyzePatterns(_ context.Context, _ models.AnalysisContext) (models.PatternAnalysis, error) {
	return models.PatternAnalysis{}, errProviderDown
}

func (failingAnalysis) AnalyzeRootCause(_ context.Context, _ models.AnalysisContext) (models.RootCauseAnalysis, error) {
	return models.RootCauseAnalysis{}, errProviderDown
}

func (failingAnalysis) GenerateSolution(_ context.Context, _ models.AnalysisContext) (models.SolutionProposal, error) {
	return models.SolutionProposal{}, errProviderDown
}

func (failingAnalysis) AssessConfidence(_ context.Context, _ models.AnalysisResult) (models.ConfidenceAssessment, error) {
	return models.ConfidenceAssessment{}, errProviderDown
}

func TestAnalyzer_AllSubCallsFallBack(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	analyzer := triage.NewAnalyzer(failingAnalysis{}, logger)

	ticket := &models.Ticket{ID: "tk-1", Title: "Broken", Priority: models.TicketPriorityMedium}

	result := analyzer.Analyze(context.Background(), models.AnalysisContext{Ticket: ticket})

	assert.Equal(t, []string{
		"analyze_patterns",
		"analyze_root_cause",
		"generate_solution",
		"assess_confidence",
	}, result.Fallbacks)

	assert.InDelta(t, 0.5, result.OverallConfidence, 0.0001)
	assert.NotEmpty(t, result.Solution.Resolution)
	assert.NotEmpty(t, result.RootCause.RootCause)
}

type partialAnalysis struct {
	*scriptedAnalysis
}

func (p partialAnalysis) GenerateSolution(_ context.Context, _ models.AnalysisContext) (models.SolutionProposal, error) {
	return models.SolutionProposal{}, errProviderDown
}

func TestAnalyzer_SingleFallbackKeepsOtherResults(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	analyzer := triage.NewAnalyzer(partialAnalysis{
		scriptedAnalysis: &scriptedAnalysis{confidence: 0.8},
	}, logger)

	ticket := &models.Ticket{ID: "tk-1", Title: "Broken", Priority: models.TicketPriorityMedium}

	result := analyzer.Analyze(context.Background(), models.AnalysisContext{Ticket: ticket})

	assert.Equal(t, []string{"generate_solution"}, result.Fallbacks)
	assert.Equal(t, "stale client configuration", result.RootCause.RootCause)
	assert.InDelta(t, 0.8, result.OverallConfidence, 0.0001)
}
