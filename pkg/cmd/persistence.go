package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/helpflow/triago/pkg/persistence"
	"github.com/helpflow/triago/pkg/persistence/file"
	"github.com/helpflow/triago/pkg/persistence/postgresql"
)

// NewPersistence creates the persistence layer for the given database URL.
// A postgres scheme selects PostgreSQL; everything else is file-based.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		persist, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL persistence: %w", err))
		}

		return persist
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	return parts[0]
}
