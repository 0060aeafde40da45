package notify_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpflow/triago/pkg/actions/notify"
	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
)

type fakeNotifier struct {
	userMessage string
	team        string
	teamMessage string
	delivery    protocol.DeliveryResult
	err         error
}

func (n *fakeNotifier) NotifyUser(_ context.Context, _ *models.Ticket, message string) (protocol.DeliveryResult, error) {
	n.userMessage = message

	return n.delivery, n.err
}

func (n *fakeNotifier) NotifyTeam(_ context.Context, team, message string, _ *models.Ticket) (protocol.DeliveryResult, error) {
	n.team = team
	n.teamMessage = message

	return n.delivery, n.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestNewUserAction_RequiresMessage(t *testing.T) {
	t.Parallel()

	_, err := notify.NewUserAction(map[string]any{}, &fakeNotifier{})

	require.ErrorIs(t, err, notify.ErrMessageRequired)
}

func TestUserAction_AppendsResolution(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{
		delivery: protocol.DeliveryResult{Delivered: true, Channels: map[string]string{"log": "delivered"}},
	}

	action, err := notify.NewUserAction(map[string]any{
		"message":    "Your ticket has been resolved",
		"resolution": "Restart the client",
	}, notifier)
	require.NoError(t, err)

	ticket := &models.Ticket{ID: "tk-1"}

	result, err := action.Execute(context.Background(), models.ExecutionContext{Ticket: ticket}, testLogger())

	require.NoError(t, err)
	assert.Contains(t, notifier.userMessage, "Your ticket has been resolved")
	assert.Contains(t, notifier.userMessage, "Restart the client")
	assert.Equal(t, true, result["delivered"])
}

func TestUserAction_DeliveryErrorIsAbsorbed(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{err: errors.New("webhook unreachable")}

	action, err := notify.NewUserAction(map[string]any{"message": "hello"}, notifier)
	require.NoError(t, err)

	ticket := &models.Ticket{ID: "tk-1"}

	result, err := action.Execute(context.Background(), models.ExecutionContext{Ticket: ticket}, testLogger())

	// Notification failure is reported in the payload, never as an action error.
	require.NoError(t, err)
	assert.Equal(t, false, result["delivered"])
	assert.Equal(t, "webhook unreachable", result["error"])
}

func TestNewTeamAction_DefaultsTeam(t *testing.T) {
	t.Parallel()

	action, err := notify.NewTeamAction(map[string]any{"message": "escalated"}, &fakeNotifier{})

	require.NoError(t, err)
	assert.Equal(t, "support", action.Team)
}

func TestTeamAction_AppendsContextSummary(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{
		delivery: protocol.DeliveryResult{Delivered: true},
	}

	action, err := notify.NewTeamAction(map[string]any{
		"message":         "Ticket needs review",
		"team":            "senior_support",
		"context_summary": "two similar incidents this week",
	}, notifier)
	require.NoError(t, err)

	ticket := &models.Ticket{ID: "tk-1"}

	result, err := action.Execute(context.Background(), models.ExecutionContext{Ticket: ticket}, testLogger())

	require.NoError(t, err)
	assert.Equal(t, "senior_support", notifier.team)
	assert.Contains(t, notifier.teamMessage, "two similar incidents this week")
	assert.Equal(t, "senior_support", result["team"])
}

func TestActions_MissingTicketFails(t *testing.T) {
	t.Parallel()

	userAction, err := notify.NewUserAction(map[string]any{"message": "hello"}, &fakeNotifier{})
	require.NoError(t, err)

	_, err = userAction.Execute(context.Background(), models.ExecutionContext{}, testLogger())
	require.Error(t, err)

	teamAction, err := notify.NewTeamAction(map[string]any{"message": "hello"}, &fakeNotifier{})
	require.NoError(t, err)

	_, err = teamAction.Execute(context.Background(), models.ExecutionContext{}, testLogger())
	require.Error(t, err)
}
