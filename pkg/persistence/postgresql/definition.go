package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/persistence"
)

// definitionRowID is the fixed primary key of the single definition row.
const definitionRowID = 1

// DefinitionStore persists the workflow definition as a single JSONB row.
type DefinitionStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDefinitionStore creates a new definition store.
func NewDefinitionStore(db *sql.DB, logger *slog.Logger) *DefinitionStore {
	return &DefinitionStore{
		db:     db,
		logger: logger.With("module", "postgresql.definition"),
	}
}

// SaveDefinition overwrites the stored definition.
func (ds *DefinitionStore) SaveDefinition(ctx context.Context, def *models.WorkflowDefinition) error {
	document, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow definition: %w", err)
	}

	query := `
		INSERT INTO workflow_definition (id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = NOW()`

	_, err = ds.db.ExecContext(ctx, query, definitionRowID, document)
	if err != nil {
		return fmt.Errorf("failed to save workflow definition: %w", err)
	}

	return nil
}

// LoadDefinition returns the stored definition. A missing row or a document
// that fails validation reports ErrDefinitionNotFound.
func (ds *DefinitionStore) LoadDefinition(ctx context.Context) (*models.WorkflowDefinition, error) {
	var document []byte

	query := "SELECT document FROM workflow_definition WHERE id = $1"

	err := ds.db.QueryRowContext(ctx, query, definitionRowID).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	_, err := ds.db.ExecContext(ctx, "DELETE FROM workflow_definition WHERE id = $1", definitionRowID)
	if err != nil {
		return fmt.Errorf("failed to clear workflow definition: %w", err)
	}

	return nil
}
