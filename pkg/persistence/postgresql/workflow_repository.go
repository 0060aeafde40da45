package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/persistence"
)

// WorkflowRepository handles workflow operations against PostgreSQL. The step
// log lives in a JSONB column and is only ever appended to.
type WorkflowRepository struct {
	db *sql.DB
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// CreateWorkflow inserts a new workflow record.
func (wr *WorkflowRepository) CreateWorkflow(ctx context.Context, workflow *models.Workflow) error {
	if workflow.StartedAt.IsZero() {
		workflow.StartedAt = time.Now().UTC()
	}

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusRunning
	}

	steps, err := marshalSteps(workflow.Steps)
	if err != nil {
		return err
	}

	_, err = wr.db.ExecContext(ctx, `
		INSERT INTO workflows (id, ticket_id, steps, status, final_confidence, total_duration_ms, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		workflow.ID, workflow.TicketID, steps, workflow.Status,
		workflow.FinalConfidence, workflow.TotalDurationMs, workflow.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// WorkflowByID loads a single workflow.
func (wr *WorkflowRepository) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	var (
		workflow    models.Workflow
		steps       []byte
		completedAt sql.NullTime
	)

	err := wr.db.QueryRowContext(ctx, `
		SELECT id, ticket_id, steps, status, final_confidence, total_duration_ms, started_at, completed_at
		FROM workflows WHERE id = $1`, id).
		Scan(&workflow.ID, &workflow.TicketID, &steps, &workflow.Status,
			&workflow.FinalConfidence, &workflow.TotalDurationMs, &workflow.StartedAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workflow %s: %w", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow %s: %w", id, err)
	}

	err = json.Unmarshal(steps, &workflow.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to decode steps for workflow %s: %w", id, err)
	}

	if completedAt.Valid {
		workflow.CompletedAt = &completedAt.Time
	}

	return &workflow, nil
}

// AppendStep appends one step record to a workflow's step log.
func (wr *WorkflowRepository) AppendStep(ctx context.Context, workflowID string, step models.StepRecord) error {
	data, err := json.Marshal(step)
	if err != nil {
		return fmt.Errorf("failed to encode step for workflow %s: %w", workflowID, err)
	}

	result, err := wr.db.ExecContext(ctx, `
		UPDATE workflows SET steps = steps || $2::jsonb WHERE id = $1`,
		workflowID, data)
	if err != nil {
		return fmt.Errorf("failed to append step to workflow %s: %w", workflowID, err)
	}

	return requireWorkflowRow(result, workflowID)
}

// CompleteWorkflow closes a workflow as completed.
func (wr *WorkflowRepository) CompleteWorkflow(ctx context.Context, workflowID string, finalConfidence float64, totalDurationMs int64) error {
	result, err := wr.db.ExecContext(ctx, `
		UPDATE workflows SET status = $2, final_confidence = $3, total_duration_ms = $4, completed_at = $5
		WHERE id = $1`,
		workflowID, models.WorkflowStatusCompleted, finalConfidence, totalDurationMs, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to complete workflow %s: %w", workflowID, err)
	}

	return requireWorkflowRow(result, workflowID)
}

// FailWorkflow closes a workflow as failed.
func (wr *WorkflowRepository) FailWorkflow(ctx context.Context, workflowID string) error {
	result, err := wr.db.ExecContext(ctx, `
		UPDATE workflows SET status = $2, completed_at = $3 WHERE id = $1`,
		workflowID, models.WorkflowStatusFailed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to fail workflow %s: %w", workflowID, err)
	}

	return requireWorkflowRow(result, workflowID)
}

// StuckWorkflowIDs returns workflows still running past the given deadline.
// Used by the janitor to reap abandoned runs.
func (wr *WorkflowRepository) StuckWorkflowIDs(ctx context.Context, startedBefore time.Time) ([]string, error) {
	rows, err := wr.db.QueryContext(ctx, `
		SELECT id FROM workflows WHERE status = $1 AND started_at < $2`,
		models.WorkflowStatusRunning, startedBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to query stuck workflows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string

	for rows.Next() {
		var id string

		err = rows.Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow id: %w", err)
		}

		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stuck workflows: %w", err)
	}

	return ids, nil
}

func marshalSteps(steps []models.StepRecord) ([]byte, error) {
	if steps == nil {
		steps = []models.StepRecord{}
	}

	data, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode steps: %w", err)
	}

	return data, nil
}

func requireWorkflowRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for workflow %s: %w", id, err)
	}

	if affected == 0 {
		return fmt.Errorf("workflow %s: %w", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}
