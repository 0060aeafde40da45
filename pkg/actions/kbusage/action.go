// Package kbusage provides the action that records knowledge base article usage.
package kbusage

import (
	"context"
	"log/slog"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
)

// Action increments usage counters for the knowledge base articles that
// informed a resolution. An empty article list is a no-op.
type Action struct {
	ArticleIDs []string
	WasHelpful bool

	kb protocol.KnowledgeBaseProvider
}

func NewAction(config map[string]any, kb protocol.KnowledgeBaseProvider) (*Action, error) {
	wasHelpful := true
	if v, ok := config["was_helpful"].(bool); ok {
		wasHelpful = v
	}

	var articleIDs []string

	switch ids := config["article_ids"].(type) {
	case []string:
		articleIDs = ids
	case []any:
		for _, id := range ids {
			if str, ok := id.(string); ok {
				articleIDs = append(articleIDs, str)
			}
		}
	}

	return &Action{
		ArticleIDs: articleIDs,
		WasHelpful: wasHelpful,
		kb:         kb,
	}, nil
}

func (a *Action) Execute(ctx context.Context, _ models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", models.ActionUpdateKBUsage)

	if len(a.ArticleIDs) == 0 {
		logger.DebugContext(ctx, "No knowledge base articles referenced, nothing to record")

		return map[string]any{"recorded": 0}, nil
	}

	recorded := 0
	failures := map[string]string{}

	for _, articleID := range a.ArticleIDs {
		err := a.kb.RecordUsage(ctx, articleID, a.WasHelpful)
		if err != nil {
			failures[articleID] = err.Error()

			continue
		}

		recorded++
	}

	logger.InfoContext(ctx, "Knowledge base usage recorded", "recorded", recorded, "failed", len(failures))

	result := map[string]any{"recorded": recorded}
	if len(failures) > 0 {
		result["failures"] = failures
	}

	return result, nil
}
