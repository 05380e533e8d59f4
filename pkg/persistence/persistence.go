// Package persistence provides the data storage abstraction layer for leads
// and the workflow definition.
package persistence

import (
	"context"

	"github.com/piazza-crm/leadflow/pkg/models"
)

// LeadRepository stores leads.
type LeadRepository interface {
	// Leads returns all leads, newest first.
	Leads(ctx context.Context) ([]*models.Lead, error)

	// LeadByID returns the lead or ErrLeadNotFound.
	LeadByID(ctx context.Context, id string) (*models.Lead, error)

	SaveLead(ctx context.Context, lead *models.Lead) error

	// UpdateLead applies the non-nil fields of the patch and returns the
	// updated lead, or ErrLeadNotFound.
	UpdateLead(ctx context.Context, id string, patch models.LeadUpdate) (*models.Lead, error)

	DeleteLead(ctx context.Context, id string) error
}

// DefinitionStore holds the single current workflow definition.
type DefinitionStore interface {
	// SaveDefinition overwrites the current definition. No versioning, no
	// merge.
	SaveDefinition(ctx context.Context, def *models.WorkflowDefinition) error

	// LoadDefinition returns the persisted definition or
	// ErrDefinitionNotFound. A malformed stored document is reported as
	// not found, never as a fatal error.
	LoadDefinition(ctx context.Context) (*models.WorkflowDefinition, error)

	// ClearDefinition erases the persisted definition. Callers fall back
	// to models.NewDefaultDefinition.
	ClearDefinition(ctx context.Context) error
}

type Persistence interface {
	LeadRepository() LeadRepository
	DefinitionStore() DefinitionStore
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
