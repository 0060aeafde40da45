// Package postgresql provides PostgreSQL persistence for tickets, workflows,
// the knowledge base and learning metrics.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/helpflow/triago/pkg/persistence/sqlbase"
	"github.com/helpflow/triago/pkg/protocol"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	ticketRepo   *TicketRepository
	workflowRepo *WorkflowRepository
	metricsRepo  *MetricsRepository
	kbRepo       *KnowledgeBaseRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs pending
// migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:           database,
		logger:       logger,
		ticketRepo:   NewTicketRepository(database),
		workflowRepo: NewWorkflowRepository(database),
		metricsRepo:  NewMetricsRepository(database),
		kbRepo:       NewKnowledgeBaseRepository(database),
	}

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) TicketRepository() protocol.TicketStore {
	return p.ticketRepo
}

func (p *Persistence) WorkflowRepository() protocol.WorkflowStore {
	return p.workflowRepo
}

func (p *Persistence) MetricsRepository() protocol.MetricsStore {
	return p.metricsRepo
}

// SearchRepository returns the full-text similarity search over resolved
// tickets.
func (p *Persistence) SearchRepository() protocol.SearchProvider {
	return &searchRepository{db: p.db}
}

func (p *Persistence) KnowledgeBaseRepository() protocol.KnowledgeBaseProvider {
	return p.kbRepo
}
