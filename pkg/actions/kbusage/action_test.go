package kbusage_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpflow/triago/pkg/actions/kbusage"
	"github.com/helpflow/triago/pkg/models"
)

type fakeKB struct {
	usage   map[string]bool
	failing map[string]bool
}

func (s *fakeKB) Search(_ context.Context, _, _ string, _ int) ([]models.KBArticle, error) {
	return nil, nil
}

func (s *fakeKB) RecordUsage(_ context.Context, articleID string, wasHelpful bool) error {
	if s.failing[articleID] {
		return errors.New("article not found")
	}

	if s.usage == nil {
		s.usage = make(map[string]bool)
	}

	s.usage[articleID] = wasHelpful

	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestNewAction_ArticleIDParsing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   map[string]any
		expected []string
	}{
		{
			name:     "string slice",
			config:   map[string]any{"article_ids": []string{"kb-1", "kb-2"}},
			expected: []string{"kb-1", "kb-2"},
		},
		{
			name:     "decoded json slice",
			config:   map[string]any{"article_ids": []any{"kb-1", "kb-2", 42}},
			expected: []string{"kb-1", "kb-2"},
		},
		{
			name:     "missing key",
			config:   map[string]any{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			action, err := kbusage.NewAction(tt.config, &fakeKB{})

			require.NoError(t, err)
			assert.Equal(t, tt.expected, action.ArticleIDs)
		})
	}
}

func TestExecute_RecordsUsage(t *testing.T) {
	t.Parallel()

	kb := &fakeKB{}
	action, err := kbusage.NewAction(map[string]any{
		"article_ids": []string{"kb-1", "kb-2"},
		"was_helpful": true,
	}, kb)
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), models.ExecutionContext{}, testLogger())

	require.NoError(t, err)
	assert.Equal(t, 2, result["recorded"])
	assert.True(t, kb.usage["kb-1"])
	assert.True(t, kb.usage["kb-2"])
}

func TestExecute_EmptyArticleListIsNoOp(t *testing.T) {
	t.Parallel()

	action, err := kbusage.NewAction(map[string]any{}, &fakeKB{})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), models.ExecutionContext{}, testLogger())

	require.NoError(t, err)
	assert.Equal(t, 0, result["recorded"])
}

func TestExecute_PartialFailuresAreReported(t *testing.T) {
	t.Parallel()

	kb := &fakeKB{failing: map[string]bool{"kb-missing": true}}
	action, err := kbusage.NewAction(map[string]any{
		"article_ids": []string{"kb-1", "kb-missing"},
	}, kb)
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), models.ExecutionContext{}, testLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, result["recorded"])

	failures, ok := result["failures"].(map[string]string)
	require.True(t, ok)
	assert.Contains(t, failures, "kb-missing")
}
