// Package metrics maintains the process-wide learning metrics aggregate.
//
// The aggregate is shared by every concurrent workflow, so all updates go
// through a single mutex-guarded read-modify-write against the backing store.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
)

// positiveRatingFloor is the minimum rating for feedback to count as positive.
const positiveRatingFloor = 4

// Outcome is what one finalized workflow contributes to the aggregate.
type Outcome struct {
	FinalStatus     models.TicketStatus
	FinalConfidence float64
	Verification    *models.VerificationResult
}

// Accumulator serializes all updates to the learning metrics aggregate.
type Accumulator struct {
	mu     sync.Mutex
	store  protocol.MetricsStore
	logger *slog.Logger
}

func NewAccumulator(store protocol.MetricsStore, logger *slog.Logger) *Accumulator {
	return &Accumulator{
		store:  store,
		logger: logger.With("module", "learning_metrics"),
	}
}

// RecordOutcome folds one finalized workflow into the aggregate. The average
// confidence is maintained as a running mean.
func (a *Accumulator) RecordOutcome(ctx context.Context, outcome Outcome) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	current, err := a.load(ctx)
	if err != nil {
		return err
	}

	current.TotalTicketsProcessed++

	if outcome.FinalStatus == models.TicketStatusResolved {
		current.SuccessfulResolutions++
	}

	if outcome.FinalStatus == models.TicketStatusEscalated {
		current.Escalations++
	}

	if outcome.Verification != nil && outcome.Verification.Outcome == models.VerificationFailed {
		current.VerificationFailures++
	}

	n := float64(current.TotalTicketsProcessed)
	current.AverageConfidence = (current.AverageConfidence*(n-1) + outcome.FinalConfidence) / n
	current.UpdatedAt = time.Now().UTC()

	err = a.store.Save(ctx, current)
	if err != nil {
		return fmt.Errorf("failed to save learning metrics: %w", err)
	}

	return nil
}

// RecordFeedback folds one feedback submission into the aggregate, bucketing
// keyword matches into resolution patterns and common failures.
func (a *Accumulator) RecordFeedback(ctx context.Context, feedback models.Feedback) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	current, err := a.load(ctx)
	if err != nil {
		return err
	}

	current.FeedbackCount++

	if feedback.Effective && feedback.Rating >= positiveRatingFloor {
		current.PositiveFeedback++
	}

	for _, match := range classifyFeedback(feedback.Text) {
		switch match.bucket {
		case bucketPattern:
			current.ResolutionPatterns[match.tag]++
		case bucketFailure:
			current.CommonFailures[match.tag]++
		}
	}

	current.UpdatedAt = time.Now().UTC()

	err = a.store.Save(ctx, current)
	if err != nil {
		return fmt.Errorf("failed to save learning metrics: %w", err)
	}

	a.logger.InfoContext(ctx, "Feedback recorded",
		"ticket_id", feedback.TicketID,
		"effective", feedback.Effective,
		"rating", feedback.Rating,
	)

	return nil
}

// Snapshot returns the current aggregate, or an empty one before first write.
func (a *Accumulator) Snapshot(ctx context.Context) (*models.LearningMetrics, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.load(ctx)
}

// load fetches the aggregate, creating an empty one lazily. Callers hold the mutex.
func (a *Accumulator) load(ctx context.Context) (*models.LearningMetrics, error) {
	current, err := a.store.LoadCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load learning metrics: %w", err)
	}

	if current == nil {
		current = models.NewLearningMetrics()
	}

	if current.ResolutionPatterns == nil {
		current.ResolutionPatterns = make(map[string]int)
	}

	if current.CommonFailures == nil {
		current.CommonFailures = make(map[string]int)
	}

	return current, nil
}

type feedbackBucket int

const (
	bucketPattern feedbackBucket = iota
	bucketFailure
)

type feedbackMatch struct {
	bucket feedbackBucket
	tag    string
}

// classifyFeedback maps feedback keywords to aggregate buckets. Each matched
// rule contributes one increment.
func classifyFeedback(text string) []feedbackMatch {
	lowered := strings.ToLower(text)

	var matches []feedbackMatch

	if strings.Contains(lowered, "slow") {
		matches = append(matches, feedbackMatch{bucket: bucketFailure, tag: "slow_response"})
	}

	if strings.Contains(lowered, "wrong") || strings.Contains(lowered, "incorrect") {
		matches = append(matches, feedbackMatch{bucket: bucketFailure, tag: "incorrect_solution"})
	}

	if strings.Contains(lowered, "helpful") || strings.Contains(lowered, "good") {
		matches = append(matches, feedbackMatch{bucket: bucketPattern, tag: "positive_resolution"})
	}

	return matches
}
