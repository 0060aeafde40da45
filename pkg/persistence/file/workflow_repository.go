package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/persistence"
)

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	root string
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) dir() string {
	return filepath.Join(wr.root, "workflows")
}

func (wr *WorkflowRepository) path(id string) string {
	return filepath.Join(wr.dir(), id+".json")
}

// CreateWorkflow persists a new workflow record.
func (wr *WorkflowRepository) CreateWorkflow(_ context.Context, workflow *models.Workflow) error {
	if workflow.StartedAt.IsZero() {
		workflow.StartedAt = time.Now().UTC()
	}

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusRunning
	}

	return wr.write(workflow)
}

// WorkflowByID loads a single workflow from disk.
func (wr *WorkflowRepository) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	data, err := os.ReadFile(wr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("workflow %s: %w", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to read workflow %s: %w", id, err)
	}

	var workflow models.Workflow

	err = json.Unmarshal(data, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", id, err)
	}

	return &workflow, nil
}

// AppendStep appends one step record to a workflow's step log.
func (wr *WorkflowRepository) AppendStep(ctx context.Context, workflowID string, step models.StepRecord) error {
	workflow, err := wr.WorkflowByID(ctx, workflowID)
	if err != nil {
		return err
	}

	workflow.Steps = append(workflow.Steps, step)

	return wr.write(workflow)
}

// CompleteWorkflow closes a workflow as completed.
func (wr *WorkflowRepository) CompleteWorkflow(ctx context.Context, workflowID string, finalConfidence float64, totalDurationMs int64) error {
	workflow, err := wr.WorkflowByID(ctx, workflowID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	workflow.Status = models.WorkflowStatusCompleted
	workflow.FinalConfidence = finalConfidence
	workflow.TotalDurationMs = totalDurationMs
	workflow.CompletedAt = &now

	return wr.write(workflow)
}

// FailWorkflow closes a workflow as failed.
func (wr *WorkflowRepository) FailWorkflow(ctx context.Context, workflowID string) error {
	workflow, err := wr.WorkflowByID(ctx, workflowID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	workflow.Status = models.WorkflowStatusFailed
	workflow.CompletedAt = &now

	return wr.write(workflow)
}

// StuckWorkflowIDs returns workflows still running past the given deadline.
// Used by the janitor to reap abandoned runs.
func (wr *WorkflowRepository) StuckWorkflowIDs(ctx context.Context, startedBefore time.Time) ([]string, error) {
	root := os.DirFS(wr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	var ids []string

	for _, file := range jsonFiles {
		workflow, err := wr.WorkflowByID(ctx, file[:len(file)-5])
		if err != nil {
			return nil, err
		}

		if workflow.Status == models.WorkflowStatusRunning && workflow.StartedAt.Before(startedBefore) {
			ids = append(ids, workflow.ID)
		}
	}

	return ids, nil
}

func (wr *WorkflowRepository) write(workflow *models.Workflow) error {
	err := os.MkdirAll(wr.dir(), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", workflow.ID, err)
	}

	err = os.WriteFile(wr.path(workflow.ID), data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write workflow %s: %w", workflow.ID, err)
	}

	return nil
}
