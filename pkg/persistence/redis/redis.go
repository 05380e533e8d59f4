// Package redis provides Redis persistence for leads and the workflow
// definition. Leads are stored as JSON values under per-lead keys; the
// definition lives under a single well-known key, mirroring the
// single-document model of the other providers.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/piazza-crm/leadflow/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const (
	leadKeyPrefix = "leadflow:leads:"
	definitionKey = "leadflow:workflow"
)

// Persistence implements the persistence layer for Redis.
type Persistence struct {
	client   *redis.Client
	leadRepo *LeadRepository
	defStore *DefinitionStore
}

// NewPersistence creates a new Redis persistence layer. The URL uses the
// standard redis:// scheme, e.g. redis://localhost:6379/0.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(normalizeURL(redisURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{
		client:   client,
		leadRepo: NewLeadRepository(client, logger),
		defStore: NewDefinitionStore(client, logger),
	}, nil
}

// normalizeURL accepts bare host:port values for convenience.
func normalizeURL(redisURL string) string {
	if strings.Contains(redisURL, "://") {
		return redisURL
	}

	return "redis://" + redisURL
}

// Close closes the Redis connection.
func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}

	return nil
}

// HealthCheck verifies the Redis connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) LeadRepository() persistence.LeadRepository {
	return p.leadRepo
}

func (p *Persistence) DefinitionStore() persistence.DefinitionStore {
	return p.defStore
}
