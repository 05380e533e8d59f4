// Package file provides file-based persistence for leads and the workflow
// definition.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/piazza-crm/leadflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the
// file system: one JSON file per lead, the definition as a single JSON
// document under a well-known name.
type Persistence struct {
	root     string
	leadRepo *LeadRepository
	defStore *DefinitionStore
}

// NewPersistence creates a new instance rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:     cleanRoot,
		leadRepo: NewLeadRepository(cleanRoot),
		defStore: NewDefinitionStore(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) LeadRepository() persistence.LeadRepository {
	return fp.leadRepo
}

func (fp *Persistence) DefinitionStore() persistence.DefinitionStore {
	return fp.defStore
}
