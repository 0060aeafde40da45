package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/persistence"
)

const uniqueViolationCode = "23505"

// TicketRepository handles ticket operations against PostgreSQL.
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// CreateTicket inserts a new ticket, assigning an ID and timestamps when missing.
func (tr *TicketRepository) CreateTicket(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	if ticket.ID == "" {
		ticket.ID = "tk-" + uuid.New().String()[:8]
	}

	now := time.Now().UTC()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}

	ticket.UpdatedAt = now

	if ticket.Status == "" {
		ticket.Status = models.TicketStatusNew
	}

	escalation, err := marshalEscalation(ticket.Escalation)
	if err != nil {
		return nil, err
	}

	_, err = tr.db.ExecContext(ctx, `
		INSERT INTO tickets (id, title, description, category, priority, status,
			resolution, resolved_by, confidence, escalation, requester, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		ticket.ID, ticket.Title, ticket.Description, ticket.Category, ticket.Priority,
		ticket.Status, nullString(ticket.Resolution), nullString(ticket.ResolvedBy),
		ticket.Confidence, escalation, nullString(ticket.Requester),
		ticket.CreatedAt, ticket.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return nil, fmt.Errorf("ticket %s: %w", ticket.ID, persistence.ErrTicketAlreadyExists)
		}

		return nil, fmt.Errorf("failed to insert ticket %s: %w", ticket.ID, err)
	}

	return ticket, nil
}

// TicketByID loads a single ticket.
func (tr *TicketRepository) TicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	row := tr.db.QueryRowContext(ctx, `
		SELECT id, title, description, category, priority, status,
			resolution, resolved_by, confidence, escalation, requester, created_at, updated_at
		FROM tickets WHERE id = $1`, id)

	return scanTicket(row, id)
}

// UpdateTicket overwrites an existing ticket record.
func (tr *TicketRepository) UpdateTicket(ctx context.Context, ticket *models.Ticket) error {
	ticket.UpdatedAt = time.Now().UTC()

	escalation, err := marshalEscalation(ticket.Escalation)
	if err != nil {
		return err
	}

	result, err := tr.db.ExecContext(ctx, `
		UPDATE tickets SET title = $2, description = $3, category = $4, priority = $5,
			status = $6, resolution = $7, resolved_by = $8, confidence = $9,
			escalation = $10, requester = $11, updated_at = $12
		WHERE id = $1`,
		ticket.ID, ticket.Title, ticket.Description, ticket.Category, ticket.Priority,
		ticket.Status, nullString(ticket.Resolution), nullString(ticket.ResolvedBy),
		ticket.Confidence, escalation, nullString(ticket.Requester), ticket.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update ticket %s: %w", ticket.ID, err)
	}

	return requireRow(result, ticket.ID)
}

// ResolveTicket marks a ticket resolved with the given resolution metadata.
func (tr *TicketRepository) ResolveTicket(ctx context.Context, id, resolution, resolvedBy string, confidence float64) error {
	result, err := tr.db.ExecContext(ctx, `
		UPDATE tickets SET status = $2, resolution = $3, resolved_by = $4,
			confidence = $5, updated_at = $6
		WHERE id = $1`,
		id, models.TicketStatusResolved, resolution, resolvedBy, confidence, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to resolve ticket %s: %w", id, err)
	}

	return requireRow(result, id)
}

// EscalateTicket marks a ticket escalated and attaches the escalation metadata.
func (tr *TicketRepository) EscalateTicket(ctx context.Context, id string, escalation models.EscalationInfo) error {
	if escalation.EscalatedAt.IsZero() {
		escalation.EscalatedAt = time.Now().UTC()
	}

	data, err := marshalEscalation(&escalation)
	if err != nil {
		return err
	}

	result, err := tr.db.ExecContext(ctx, `
		UPDATE tickets SET status = $2, escalation = $3, updated_at = $4
		WHERE id = $1`,
		id, models.TicketStatusEscalated, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to escalate ticket %s: %w", id, err)
	}

	return requireRow(result, id)
}

func scanTicket(row *sql.Row, id string) (*models.Ticket, error) {
	var (
		ticket     models.Ticket
		resolution sql.NullString
		resolvedBy sql.NullString
		confidence sql.NullFloat64
		escalation []byte
		requester  sql.NullString
	)

	err := row.Scan(&ticket.ID, &ticket.Title, &ticket.Description, &ticket.Category,
		&ticket.Priority, &ticket.Status, &resolution, &resolvedBy, &confidence,
		&escalation, &requester, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ticket %s: %w", id, persistence.ErrTicketNotFound)
		}

		return nil, fmt.Errorf("failed to scan ticket %s: %w", id, err)
	}

	ticket.Resolution = resolution.String
	ticket.ResolvedBy = resolvedBy.String
	ticket.Confidence = confidence.Float64
	ticket.Requester = requester.String

	if len(escalation) > 0 {
		var info models.EscalationInfo

		err = json.Unmarshal(escalation, &info)
		if err != nil {
			return nil, fmt.Errorf("failed to decode escalation for ticket %s: %w", id, err)
		}

		ticket.Escalation = &info
	}

	return &ticket, nil
}

func marshalEscalation(escalation *models.EscalationInfo) ([]byte, error) {
	if escalation == nil {
		return nil, nil
	}

	data, err := json.Marshal(escalation)
	if err != nil {
		return nil, fmt.Errorf("failed to encode escalation: %w", err)
	}

	return data, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for ticket %s: %w", id, err)
	}

	if affected == 0 {
		return fmt.Errorf("ticket %s: %w", id, persistence.ErrTicketNotFound)
	}

	return nil
}
