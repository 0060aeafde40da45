// Package file provides file-based persistence for tickets, workflows, the
// knowledge base and learning metrics.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/helpflow/triago/pkg/persistence"
	"github.com/helpflow/triago/pkg/protocol"
)

// Persistence implements the persistence.Persistence interface using the file
// system. Every record is one JSON file under the root directory.
type Persistence struct {
	root         string
	ticketRepo   *TicketRepository
	workflowRepo *WorkflowRepository
	metricsRepo  *MetricsRepository
	kbRepo       *KnowledgeBaseRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		ticketRepo:   NewTicketRepository(cleanRoot),
		workflowRepo: NewWorkflowRepository(cleanRoot),
		metricsRepo:  NewMetricsRepository(cleanRoot),
		kbRepo:       NewKnowledgeBaseRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) TicketRepository() protocol.TicketStore {
	return fp.ticketRepo
}

func (fp *Persistence) WorkflowRepository() protocol.WorkflowStore {
	return fp.workflowRepo
}

func (fp *Persistence) MetricsRepository() protocol.MetricsStore {
	return fp.metricsRepo
}

// SearchRepository returns a similarity search backed by the resolved tickets
// already on disk.
func (fp *Persistence) SearchRepository() protocol.SearchProvider {
	return &searchRepository{tickets: fp.ticketRepo}
}

func (fp *Persistence) KnowledgeBaseRepository() protocol.KnowledgeBaseProvider {
	return fp.kbRepo
}
