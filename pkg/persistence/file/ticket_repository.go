package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/persistence"
)

// TicketRepository handles ticket-related file operations.
type TicketRepository struct {
	root string
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(root string) *TicketRepository {
	return &TicketRepository{root: root}
}

func (tr *TicketRepository) dir() string {
	return filepath.Join(tr.root, "tickets")
}

func (tr *TicketRepository) path(id string) string {
	return filepath.Join(tr.dir(), id+".json")
}

// CreateTicket persists a new ticket, assigning an ID and timestamps when missing.
func (tr *TicketRepository) CreateTicket(_ context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	err := os.MkdirAll(tr.dir(), 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create tickets directory: %w", err)
	}

	if ticket.ID == "" {
		ticket.ID = "tk-" + uuid.New().String()[:8]
	}

	if _, err := os.Stat(tr.path(ticket.ID)); err == nil {
		return nil, fmt.Errorf("ticket %s: %w", ticket.ID, persistence.ErrTicketAlreadyExists)
	}

	now := time.Now().UTC()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}

	ticket.UpdatedAt = now

	if ticket.Status == "" {
		ticket.Status = models.TicketStatusNew
	}

	err = tr.write(ticket)
	if err != nil {
		return nil, err
	}

	return ticket, nil
}

// TicketByID loads a single ticket from disk.
func (tr *TicketRepository) TicketByID(_ context.Context, id string) (*models.Ticket, error) {
	data, err := os.ReadFile(tr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("ticket %s: %w", id, persistence.ErrTicketNotFound)
		}

		return nil, fmt.Errorf("failed to read ticket %s: %w", id, err)
	}

	var ticket models.Ticket

	err = json.Unmarshal(data, &ticket)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ticket %s: %w", id, err)
	}

	return &ticket, nil
}

// UpdateTicket overwrites an existing ticket record.
func (tr *TicketRepository) UpdateTicket(ctx context.Context, ticket *models.Ticket) error {
	_, err := tr.TicketByID(ctx, ticket.ID)
	if err != nil {
		return err
	}

	ticket.UpdatedAt = time.Now().UTC()

	return tr.write(ticket)
}

// ResolveTicket marks a ticket resolved with the given resolution metadata.
func (tr *TicketRepository) ResolveTicket(ctx context.Context, id, resolution, resolvedBy string, confidence float64) error {
	ticket, err := tr.TicketByID(ctx, id)
	if err != nil {
		return err
	}

	ticket.Status = models.TicketStatusResolved
	ticket.Resolution = resolution
	ticket.ResolvedBy = resolvedBy
	ticket.Confidence = confidence
	ticket.UpdatedAt = time.Now().UTC()

	return tr.write(ticket)
}

// EscalateTicket marks a ticket escalated and attaches the escalation metadata.
func (tr *TicketRepository) EscalateTicket(ctx context.Context, id string, escalation models.EscalationInfo) error {
	ticket, err := tr.TicketByID(ctx, id)
	if err != nil {
		return err
	}

	if escalation.EscalatedAt.IsZero() {
		escalation.EscalatedAt = time.Now().UTC()
	}

	ticket.Status = models.TicketStatusEscalated
	ticket.Escalation = &escalation
	ticket.UpdatedAt = time.Now().UTC()

	return tr.write(ticket)
}

func (tr *TicketRepository) write(ticket *models.Ticket) error {
	err := os.MkdirAll(tr.dir(), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create tickets directory: %w", err)
	}

	data, err := json.MarshalIndent(ticket, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ticket %s: %w", ticket.ID, err)
	}

	err = os.WriteFile(tr.path(ticket.ID), data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write ticket %s: %w", ticket.ID, err)
	}

	return nil
}

// all loads every ticket on disk. Used by the file-backed similarity search.
func (tr *TicketRepository) all(ctx context.Context) ([]*models.Ticket, error) {
	root := os.DirFS(tr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket files: %w", err)
	}

	tickets := make([]*models.Ticket, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		ticketID := file[:len(file)-5] // Remove .json extension

		ticket, err := tr.TicketByID(ctx, ticketID)
		if err != nil {
			return nil, err
		}

		tickets = append(tickets, ticket)
	}

	return tickets, nil
}
