package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/persistence"
)

// definitionFile is the well-known name the single current definition is
// stored under.
const definitionFile = "workflow.json"

// DefinitionStore persists the designer's workflow definition as one JSON
// document with overwrite semantics.
type DefinitionStore struct {
	root string
}

// NewDefinitionStore creates a new definition store.
func NewDefinitionStore(root string) *DefinitionStore {
	return &DefinitionStore{root: root}
}

func (ds *DefinitionStore) filePath() string {
	return filepath.Clean(path.Join(ds.root, definitionFile))
}

// SaveDefinition overwrites the stored definition.
func (ds *DefinitionStore) SaveDefinition(_ context.Context, def *models.WorkflowDefinition) error {
	err := os.MkdirAll(ds.root, 0750)
	if err != nil {
		return fmt.Errorf("failed to create definition directory: %w", err)
	}

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow definition: %w", err)
	}

	return os.WriteFile(ds.filePath(), data, 0600)
}

// LoadDefinition returns the stored definition. A missing file, a document
// that fails schema validation, or unparsable JSON all report
// ErrDefinitionNotFound; corrupt state never takes the caller down.
func (ds *DefinitionStore) LoadDefinition(_ context.Context) (*models.WorkflowDefinition, error) {
	body, err := os.ReadFile(ds.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrDefinitionNotFound
		}

		return nil, fmt.Errorf("failed to read workflow definition: %w", err)
	}

	if err := models.ValidateDefinitionDocument(body); err != nil {
		slog.Warn("Stored workflow definition is malformed, treating as absent", "error", err)

		return nil, persistence.ErrDefinitionNotFound
	}

	var def models.WorkflowDefinition

	err = json.Unmarshal(body, &def)
	if err != nil {
		slog.Warn("Stored workflow definition failed to parse, treating as absent", "error", err)

		return nil, persistence.ErrDefinitionNotFound
	}

	return &def, nil
}

// ClearDefinition erases the persisted definition.
func (ds *DefinitionStore) ClearDefinition(_ context.Context) error {
	err := os.Remove(ds.filePath())

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to clear workflow definition: %w", err)
	}

	return nil
}
