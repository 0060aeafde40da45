package queue

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestNewSource_RequiresQueueName(t *testing.T) {
	t.Parallel()

	_, err := NewSource("localhost:6379", "", 0, "", testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue name is required")
}

func TestNewSource_DefaultsAddr(t *testing.T) {
	t.Parallel()

	source, err := NewSource("", "", 0, "triago:tickets", testLogger())

	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", source.Addr)
	assert.Equal(t, "triago:tickets", source.Queue)
}

func TestValidatePayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload map[string]any
		valid   bool
	}{
		{
			name: "complete payload",
			payload: map[string]any{
				"title":       "VPN keeps dropping",
				"description": "connection resets",
				"priority":    "medium",
				"category":    "network",
			},
			valid: true,
		},
		{
			name: "missing description",
			payload: map[string]any{
				"title":    "VPN keeps dropping",
				"priority": "medium",
			},
			valid: false,
		},
		{
			name: "unknown priority",
			payload: map[string]any{
				"title":       "VPN keeps dropping",
				"description": "connection resets",
				"priority":    "whenever",
			},
			valid: false,
		},
		{
			name: "title too short",
			payload: map[string]any{
				"title":       "ab",
				"description": "connection resets",
				"priority":    "low",
			},
			valid: false,
		},
		{
			name: "wrong type for title",
			payload: map[string]any{
				"title":       42,
				"description": "connection resets",
				"priority":    "low",
			},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validatePayload(tt.payload)

			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
