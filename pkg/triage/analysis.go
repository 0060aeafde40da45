package triage

import (
	"context"
	"log/slog"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
)

// Fallback payloads used when an analysis sub-call fails. The pipeline
// continues with reduced confidence instead of aborting.
const (
	fallbackPatternConfidence   = 0.4
	fallbackRootCauseConfidence = 0.4
	fallbackSolutionConfidence  = 0.5
	fallbackOverallConfidence   = 0.5
)

// Analyzer aggregates the four analysis sub-calls. Each sub-call is
// fault-isolated: a failure is logged, replaced by its fixed fallback
// payload, and recorded in the result's Fallbacks list.
type Analyzer struct {
	provider protocol.AnalysisProvider
	logger   *slog.Logger
}

func NewAnalyzer(provider protocol.AnalysisProvider, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		provider: provider,
		logger:   logger.With("module", "analyzer"),
	}
}

// Analyze runs all four sub-calls and never fails as a whole.
func (a *Analyzer) Analyze(ctx context.Context, actx models.AnalysisContext) *models.AnalysisResult {
	result := &models.AnalysisResult{}

	patterns, err := a.provider.AnalyzePatterns(ctx, actx)
	if err != nil {
		a.logger.WarnContext(ctx, "Pattern analysis failed, using fallback", "error", err)

		patterns = models.PatternAnalysis{
			Summary:    "pattern analysis unavailable",
			Confidence: fallbackPatternConfidence,
		}
		result.Fallbacks = append(result.Fallbacks, "analyze_patterns")
	}

	result.Patterns = patterns

	rootCause, err := a.provider.AnalyzeRootCause(ctx, actx)
	if err != nil {
		a.logger.WarnContext(ctx, "Root cause analysis failed, using fallback", "error", err)

		rootCause = models.RootCauseAnalysis{
			RootCause:  "root cause could not be determined automatically",
			Confidence: fallbackRootCauseConfidence,
		}
		result.Fallbacks = append(result.Fallbacks, "analyze_root_cause")
	}

	result.RootCause = rootCause

	solution, err := a.provider.GenerateSolution(ctx, actx)
	if err != nil {
		a.logger.WarnContext(ctx, "Solution generation failed, using fallback", "error", err)

		solution = models.SolutionProposal{
			Resolution: "route this ticket to a support engineer for manual resolution",
			Confidence: fallbackSolutionConfidence,
		}
		result.Fallbacks = append(result.Fallbacks, "generate_solution")
	}

	result.Solution = solution

	assessment, err := a.provider.AssessConfidence(ctx, *result)
	if err != nil {
		a.logger.WarnContext(ctx, "Confidence assessment failed, using fallback", "error", err)

		assessment = models.ConfidenceAssessment{
			OverallConfidence: fallbackOverallConfidence,
			Reasoning:         "confidence assessment unavailable",
		}
		result.Fallbacks = append(result.Fallbacks, "assess_confidence")
	}

	result.OverallConfidence = assessment.OverallConfidence

	return result
}
