package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/persistence"
)

// kbRecord is the on-disk shape of a knowledge base article, including the
// usage counters that never leave the store.
type kbRecord struct {
	ArticleID    string    `json:"article_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Summary      string    `json:"summary,omitempty"`
	Category     string    `json:"category,omitempty"`
	UsageCount   int       `json:"usage_count"`
	HelpfulCount int       `json:"helpful_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// KnowledgeBaseRepository handles knowledge base file operations.
type KnowledgeBaseRepository struct {
	root string
}

// NewKnowledgeBaseRepository creates a new knowledge base repository.
func NewKnowledgeBaseRepository(root string) *KnowledgeBaseRepository {
	return &KnowledgeBaseRepository{root: root}
}

func (kr *KnowledgeBaseRepository) dir() string {
	return filepath.Join(kr.root, "kb")
}

func (kr *KnowledgeBaseRepository) path(id string) string {
	return filepath.Join(kr.dir(), id+".json")
}

// Search ranks articles by token overlap with the query, optionally filtered
// by category.
func (kr *KnowledgeBaseRepository) Search(_ context.Context, query, category string, limit int) ([]models.KBArticle, error) {
	records, err := kr.all()
	if err != nil {
		return nil, err
	}

	queryTokens := tokenize(query)

	matches := make([]models.KBArticle, 0)

	for _, record := range records {
		if category != "" && record.Category != category {
			continue
		}

		score := overlapScore(queryTokens, tokenize(record.Title+" "+record.Content))
		if score == 0 {
			continue
		}

		matches = append(matches, models.KBArticle{
			ArticleID:       record.ArticleID,
			Title:           record.Title,
			Content:         record.Content,
			Summary:         record.Summary,
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

// RecordUsage increments the usage counters of one article.
func (kr *KnowledgeBaseRepository) RecordUsage(_ context.Context, articleID string, wasHelpful bool) error {
	record, err := kr.byID(articleID)
	if err != nil {
		return err
	}

	record.UsageCount++

	if wasHelpful {
		record.HelpfulCount++
	}

	record.UpdatedAt = time.Now().UTC()

	return kr.write(record)
}

// SaveArticle stores or overwrites one article record.
func (kr *KnowledgeBaseRepository) SaveArticle(_ context.Context, record *models.KBArticle) error {
	return kr.write(&kbRecord{
		ArticleID: record.ArticleID,
		Title:     record.Title,
		Content:   record.Content,
		Summary:   record.Summary,
		UpdatedAt: time.Now().UTC(),
	})
}

func (kr *KnowledgeBaseRepository) byID(id string) (*kbRecord, error) {
	data, err := os.ReadFile(kr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("article %s: %w", id, persistence.ErrArticleNotFound)
		}

		return nil, fmt.Errorf("failed to read article %s: %w", id, err)
	}

	var record kbRecord

	err = json.Unmarshal(data, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to decode article %s: %w", id, err)
	}

	return &record, nil
}

func (kr *KnowledgeBaseRepository) all() ([]*kbRecord, error) {
	root := os.DirFS(kr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list article files: %w", err)
	}

	records := make([]*kbRecord, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		record, err := kr.byID(file[:len(file)-5])
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

func (kr *KnowledgeBaseRepository) write(record *kbRecord) error {
	err := os.MkdirAll(kr.dir(), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create kb directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode article %s: %w", record.ArticleID, err)
	}

	err = os.WriteFile(kr.path(record.ArticleID), data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write article %s: %w", record.ArticleID, err)
	}

	return nil
}
