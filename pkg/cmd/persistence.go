package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/piazza-crm/leadflow/pkg/persistence"
	"github.com/piazza-crm/leadflow/pkg/persistence/file"
	"github.com/piazza-crm/leadflow/pkg/persistence/postgresql"
	"github.com/piazza-crm/leadflow/pkg/persistence/redis"
)

// NewPersistence selects a persistence provider from the database URL
// scheme. postgres:// and redis:// pick their providers; anything else is
// treated as a file path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "redis":
		return redis.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parseProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
