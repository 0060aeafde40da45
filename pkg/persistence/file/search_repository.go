package file

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/helpflow/triago/pkg/models"
)

// searchRepository ranks resolved tickets on disk by token overlap with the
// query. Good enough for development and tests; production deployments use the
// PostgreSQL full-text search instead.
type searchRepository struct {
	tickets *TicketRepository
}

func (sr *searchRepository) FindSimilarResolved(ctx context.Context, query, excludeID string, limit int) ([]models.SimilarTicket, error) {
	tickets, err := sr.tickets.all(ctx)
	if err != nil {
		return nil, err
	}

	queryTokens := tokenize(query)

	matches := make([]models.SimilarTicket, 0)

	for _, ticket := range tickets {
		if ticket.Status != models.TicketStatusResolved || ticket.ID == excludeID {
			continue
		}

		score := overlapScore(queryTokens, tokenize(ticket.Title+" "+ticket.Description))
		if score == 0 {
			continue
		}

		matches = append(matches, models.SimilarTicket{
			TicketID:        ticket.ID,
			Title:           ticket.Title,
			Description:     ticket.Description,
			Resolution:      ticket.Resolution,
			Category:        ticket.Category,
			Priority:        ticket.Priority,
			SimilarityScore: score,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		tokens[field] = struct{}{}
	}

	return tokens
}

// overlapScore is the Jaccard index of the two token sets.
func overlapScore(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	shared := 0

	for token := range a {
		if _, ok := b[token]; ok {
			shared++
		}
	}

	return float64(shared) / float64(len(a)+len(b)-shared)
}
