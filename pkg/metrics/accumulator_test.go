package metrics_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpflow/triago/pkg/metrics"
	"github.com/helpflow/triago/pkg/models"
)

type memoryStore struct {
	mu      sync.Mutex
	current *models.LearningMetrics
	loadErr error
}

func (s *memoryStore) LoadCurrent(_ context.Context) (*models.LearningMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current, s.loadErr
}

func (s *memoryStore) Save(_ context.Context, current *models.LearningMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = current

	return nil
}

func newAccumulator(store *memoryStore) *metrics.Accumulator {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	return metrics.NewAccumulator(store, logger)
}

func TestAccumulator_RecordOutcomeRunningAverage(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	accumulator := newAccumulator(store)
	ctx := context.Background()

	outcomes := []metrics.Outcome{
		{FinalStatus: models.TicketStatusResolved, FinalConfidence: 0.9},
		{FinalStatus: models.TicketStatusEscalated, FinalConfidence: 0.6},
		{FinalStatus: models.TicketStatusResolved, FinalConfidence: 0.75},
	}

	for _, outcome := range outcomes {
		require.NoError(t, accumulator.RecordOutcome(ctx, outcome))
	}

	current := store.current
	require.NotNil(t, current)
	assert.Equal(t, 3, current.TotalTicketsProcessed)
	assert.Equal(t, 2, current.SuccessfulResolutions)
	assert.Equal(t, 1, current.Escalations)
	assert.InDelta(t, 0.75, current.AverageConfidence, 0.0001)
	assert.False(t, current.UpdatedAt.IsZero())
}

func TestAccumulator_RecordOutcomeVerificationFailure(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	accumulator := newAccumulator(store)

	err := accumulator.RecordOutcome(context.Background(), metrics.Outcome{
		FinalStatus:     models.TicketStatusProcessing,
		FinalConfidence: 0.5,
		Verification:    &models.VerificationResult{Outcome: models.VerificationFailed},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.current.VerificationFailures)
	assert.Equal(t, 0, store.current.SuccessfulResolutions)
	assert.Equal(t, 0, store.current.Escalations)
}

func TestAccumulator_RecordFeedback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		feedback         models.Feedback
		expectPositive   int
		expectedPatterns map[string]int
		expectedFailures map[string]int
	}{
		{
			name:             "effective high rating counts as positive",
			feedback:         models.Feedback{TicketID: "tk-1", Effective: true, Rating: 5, Text: "very helpful"},
			expectPositive:   1,
			expectedPatterns: map[string]int{"positive_resolution": 1},
			expectedFailures: map[string]int{},
		},
		{
			name:             "effective but low rating is not positive",
			feedback:         models.Feedback{TicketID: "tk-2", Effective: true, Rating: 3},
			expectPositive:   0,
			expectedPatterns: map[string]int{},
			expectedFailures: map[string]int{},
		},
		{
			name:             "high rating but ineffective is not positive",
			feedback:         models.Feedback{TicketID: "tk-3", Effective: false, Rating: 5},
			expectPositive:   0,
			expectedPatterns: map[string]int{},
			expectedFailures: map[string]int{},
		},
		{
			name:             "complaint keywords land in common failures",
			feedback:         models.Feedback{TicketID: "tk-4", Effective: false, Rating: 1, Text: "Slow and the answer was wrong"},
			expectPositive:   0,
			expectedPatterns: map[string]int{},
			expectedFailures: map[string]int{"slow_response": 1, "incorrect_solution": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &memoryStore{}
			accumulator := newAccumulator(store)

			require.NoError(t, accumulator.RecordFeedback(context.Background(), tt.feedback))

			current := store.current
			require.NotNil(t, current)
			assert.Equal(t, 1, current.FeedbackCount)
			assert.Equal(t, tt.expectPositive, current.PositiveFeedback)
			assert.Equal(t, tt.expectedPatterns, current.ResolutionPatterns)
			assert.Equal(t, tt.expectedFailures, current.CommonFailures)
		})
	}
}

func TestAccumulator_SnapshotBeforeFirstWrite(t *testing.T) {
	t.Parallel()

	accumulator := newAccumulator(&memoryStore{})

	snapshot, err := accumulator.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Equal(t, 0, snapshot.TotalTicketsProcessed)
	assert.NotNil(t, snapshot.ResolutionPatterns)
	assert.NotNil(t, snapshot.CommonFailures)
}

func TestAccumulator_LoadErrorSurfaces(t *testing.T) {
	t.Parallel()

	store := &memoryStore{loadErr: errors.New("backend offline")}
	accumulator := newAccumulator(store)

	err := accumulator.RecordOutcome(context.Background(), metrics.Outcome{FinalConfidence: 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load learning metrics")
}
