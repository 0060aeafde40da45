package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/helpflow/triago/pkg/models"
)

// searchRepository ranks resolved tickets by full-text relevance to the query.
type searchRepository struct {
	db *sql.DB
}

func (sr *searchRepository) FindSimilarResolved(ctx context.Context, query, excludeID string, limit int) ([]models.SimilarTicket, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := sr.db.QueryContext(ctx, `
		SELECT id, title, description, COALESCE(resolution, ''), COALESCE(category, ''), priority,
			ts_rank(to_tsvector('english', title || ' ' || description), plainto_tsquery('english', $1)) AS rank
		FROM tickets
		WHERE status = $2
			AND id <> $3
			AND to_tsvector('english', title || ' ' || description) @@ plainto_tsquery('english', $1)
		ORDER BY rank DESC
		LIMIT $4`,
		query, models.TicketStatusResolved, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar tickets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	matches := make([]models.SimilarTicket, 0, limit)

	for rows.Next() {
		var match models.SimilarTicket

		err = rows.Scan(&match.TicketID, &match.Title, &match.Description,
			&match.Resolution, &match.Category, &match.Priority, &match.SimilarityScore)
		if err != nil {
			return nil, fmt.Errorf("failed to scan similar ticket: %w", err)
		}

		matches = append(matches, match)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate similar tickets: %w", err)
	}

	return matches, nil
}
