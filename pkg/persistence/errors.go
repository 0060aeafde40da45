package persistence

import "errors"

// Standard persistence error types that all implementations should use.
var (
	// ErrTicketNotFound indicates a ticket was not found by the given identifier.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketAlreadyExists indicates a ticket with the same identifier already exists.
	ErrTicketAlreadyExists = errors.New("ticket already exists")

	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrArticleNotFound indicates a knowledge base article was not found.
	ErrArticleNotFound = errors.New("knowledge base article not found")
)
