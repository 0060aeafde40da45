package escalateticket_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpflow/triago/pkg/actions/escalateticket"
	"github.com/helpflow/triago/pkg/models"
)

type fakeTicketStore struct {
	escalatedID string
	escalation  models.EscalationInfo
}

func (s *fakeTicketStore) CreateTicket(_ context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	return ticket, nil
}

func (s *fakeTicketStore) TicketByID(_ context.Context, _ string) (*models.Ticket, error) {
	return nil, nil
}

func (s *fakeTicketStore) UpdateTicket(_ context.Context, _ *models.Ticket) error {
	return nil
}

func (s *fakeTicketStore) ResolveTicket(_ context.Context, _, _, _ string, _ float64) error {
	return nil
}

func (s *fakeTicketStore) EscalateTicket(_ context.Context, id string, escalation models.EscalationInfo) error {
	s.escalatedID = id
	s.escalation = escalation

	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestNewAction_RequiresReason(t *testing.T) {
	t.Parallel()

	_, err := escalateticket.NewAction(map[string]any{}, &fakeTicketStore{})

	require.ErrorIs(t, err, escalateticket.ErrReasonRequired)
}

func TestNewAction_PriorityFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   map[string]any
		expected models.TicketPriority
	}{
		{
			name:     "suggested_priority wins",
			config:   map[string]any{"reason": "low confidence", "suggested_priority": "high", "priority": "medium"},
			expected: models.TicketPriorityHigh,
		},
		{
			name:     "priority used when suggested_priority absent",
			config:   map[string]any{"reason": "low confidence", "priority": "high"},
			expected: models.TicketPriorityHigh,
		},
		{
			name:     "no priority keys leaves it empty",
			config:   map[string]any{"reason": "low confidence"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			action, err := escalateticket.NewAction(tt.config, &fakeTicketStore{})

			require.NoError(t, err)
			assert.Equal(t, tt.expected, action.SuggestedPriority)
		})
	}
}

func TestExecute_EscalatesTicket(t *testing.T) {
	t.Parallel()

	store := &fakeTicketStore{}
	action, err := escalateticket.NewAction(map[string]any{
		"reason":             "confidence below threshold",
		"context":            "likely a certificate expiry",
		"suggested_priority": "high",
	}, store)
	require.NoError(t, err)

	ticket := &models.Ticket{ID: "tk-1", Status: models.TicketStatusProcessing}

	result, err := action.Execute(context.Background(), models.ExecutionContext{Ticket: ticket}, testLogger())

	require.NoError(t, err)
	assert.Equal(t, "tk-1", store.escalatedID)
	assert.Equal(t, "confidence below threshold", store.escalation.Reason)
	assert.Equal(t, "likely a certificate expiry", store.escalation.Context)
	assert.Equal(t, "triago", store.escalation.EscalatedBy)
	assert.False(t, store.escalation.EscalatedAt.IsZero())
	assert.Equal(t, "high", result["suggested_priority"])
}

func TestExecute_MissingTicketFails(t *testing.T) {
	t.Parallel()

	action, err := escalateticket.NewAction(map[string]any{"reason": "low confidence"}, &fakeTicketStore{})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), models.ExecutionContext{}, testLogger())

	require.Error(t, err)
}
