package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/helpflow/triago/pkg/models"
)

// MetricsRepository persists the single learning metrics aggregate in a
// one-row table.
type MetricsRepository struct {
	db *sql.DB
}

// NewMetricsRepository creates a new metrics repository.
func NewMetricsRepository(db *sql.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// LoadCurrent returns the stored aggregate, or nil when none has been written yet.
func (mr *MetricsRepository) LoadCurrent(ctx context.Context) (*models.LearningMetrics, error) {
	var data []byte

	err := mr.db.QueryRowContext(ctx, "SELECT data FROM learning_metrics WHERE id = 1").Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to load learning metrics: %w", err)
	}

	var metrics models.LearningMetrics

	err = json.Unmarshal(data, &metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to decode learning metrics: %w", err)
	}

	return &metrics, nil
}

// Save upserts the stored aggregate.
func (mr *MetricsRepository) Save(ctx context.Context, metrics *models.LearningMetrics) error {
	data, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to encode learning metrics: %w", err)
	}

	_, err = mr.db.ExecContext(ctx, `
		INSERT INTO learning_metrics (id, data, updated_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save learning metrics: %w", err)
	}

	return nil
}
