package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

// DefinitionStore persists the workflow definition under a single key.
type DefinitionStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewDefinitionStore creates a new definition store.
func NewDefinitionStore(client *redis.Client, logger *slog.Logger) *DefinitionStore {
	return &DefinitionStore{
		client: client,
		logger: logger.With("module", "redis.definition"),
	}
}

// SaveDefinition overwrites the stored definition.
func (ds *DefinitionStore) SaveDefinition(ctx context.Context, def *models.WorkflowDefinition) error {
	document, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow definition: %w", err)
	}

	err = ds.client.Set(ctx, definitionKey, document, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to save workflow definition: %w", err)
	}

	return nil
}

// LoadDefinition returns the stored definition. A missing key or a document
// that fails validation reports ErrDefinitionNotFound.
func (ds *DefinitionStore) LoadDefinition(ctx context.Context) (*models.WorkflowDefinition, error) {
	document, err := ds.client.Get(ctx, definitionKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.ErrDefinitionNotFound
		}

		return nil, fmt.Errorf("failed to load workflow definition: %w", err)
	}

	if err := models.ValidateDefinitionDocument(document); err != nil {
		ds.logger.Warn("Stored workflow definition is malformed, treating as absent", "error", err)

		return nil, persistence.ErrDefinitionNotFound
	}

	var def models.WorkflowDefinition

	err = json.Unmarshal(document, &def)
	if err != nil {
		ds.logger.Warn("Stored workflow definition failed to parse, treating as absent", "error", err)

		return nil, persistence.ErrDefinitionNotFound
	}

	return &def, nil
}

// ClearDefinition erases the persisted definition.
func (ds *DefinitionStore) ClearDefinition(ctx context.Context) error {
	err := ds.client.Del(ctx, definitionKey).Err()
	if err != nil {
		return fmt.Errorf("failed to clear workflow definition: %w", err)
	}

	return nil
}
