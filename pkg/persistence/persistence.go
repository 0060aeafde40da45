// Package persistence provides the data storage abstraction layer for
// tickets, workflows, the knowledge base and learning metrics.
package persistence

import (
	"context"

	"github.com/helpflow/triago/pkg/protocol"
)

type Persistence interface {
	TicketRepository() protocol.TicketStore
	WorkflowRepository() protocol.WorkflowStore
	MetricsRepository() protocol.MetricsStore
	SearchRepository() protocol.SearchProvider
	KnowledgeBaseRepository() protocol.KnowledgeBaseProvider
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
