package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/persistence"
)

// KnowledgeBaseRepository handles knowledge base operations against PostgreSQL.
type KnowledgeBaseRepository struct {
	db *sql.DB
}

// NewKnowledgeBaseRepository creates a new knowledge base repository.
func NewKnowledgeBaseRepository(db *sql.DB) *KnowledgeBaseRepository {
	return &KnowledgeBaseRepository{db: db}
}

// Search ranks articles by full-text relevance to the query, optionally
// filtered by category.
func (kr *KnowledgeBaseRepository) Search(ctx context.Context, query, category string, limit int) ([]models.KBArticle, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := kr.db.QueryContext(ctx, `
		SELECT id, title, content, COALESCE(summary, ''),
			ts_rank(to_tsvector('english', title || ' ' || content), plainto_tsquery('english', $1)) AS rank
		FROM kb_articles
		WHERE ($2 = '' OR category = $2)
			AND to_tsvector('english', title || ' ' || content) @@ plainto_tsquery('english', $1)
		ORDER BY rank DESC
		LIMIT $3`,
		query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge base: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]models.KBArticle, 0, limit)

	for rows.Next() {
		var article models.KBArticle

		err = rows.Scan(&article.ArticleID, &article.Title, &article.Content,
			&article.Summary, &article.SimilarityScore)
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge base article: %w", err)
		}

		articles = append(articles, article)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate knowledge base articles: %w", err)
	}

	return articles, nil
}

// RecordUsage increments the usage counters of one article.
func (kr *KnowledgeBaseRepository) RecordUsage(ctx context.Context, articleID string, wasHelpful bool) error {
	helpful := 0
	if wasHelpful {
		helpful = 1
	}

	result, err := kr.db.ExecContext(ctx, `
		UPDATE kb_articles
		SET usage_count = usage_count + 1, helpful_count = helpful_count + $2, updated_at = NOW()
		WHERE id = $1`,
		articleID, helpful)
	if err != nil {
		return fmt.Errorf("failed to record usage for article %s: %w", articleID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for article %s: %w", articleID, err)
	}

	if affected == 0 {
		return fmt.Errorf("article %s: %w", articleID, persistence.ErrArticleNotFound)
	}

	return nil
}
