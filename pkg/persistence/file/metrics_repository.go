package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/helpflow/triago/pkg/models"
)

// MetricsRepository persists the single learning metrics aggregate as one
// JSON file.
type MetricsRepository struct {
	root string
}

// NewMetricsRepository creates a new metrics repository.
func NewMetricsRepository(root string) *MetricsRepository {
	return &MetricsRepository{root: root}
}

func (mr *MetricsRepository) path() string {
	return filepath.Join(mr.root, "learning_metrics.json")
}

// LoadCurrent returns the stored aggregate, or nil when none has been written yet.
func (mr *MetricsRepository) LoadCurrent(_ context.Context) (*models.LearningMetrics, error) {
	data, err := os.ReadFile(mr.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read learning metrics: %w", err)
	}

	var metrics models.LearningMetrics

	err = json.Unmarshal(data, &metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to decode learning metrics: %w", err)
	}

	return &metrics, nil
}

// Save overwrites the stored aggregate.
func (mr *MetricsRepository) Save(_ context.Context, metrics *models.LearningMetrics) error {
	err := os.MkdirAll(mr.root, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode learning metrics: %w", err)
	}

	err = os.WriteFile(mr.path(), data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write learning metrics: %w", err)
	}

	return nil
}
