package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/persistence"
)

// LeadRepository handles lead-related file operations.
type LeadRepository struct {
	root string // File system root for storing leads
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(root string) *LeadRepository {
	return &LeadRepository{root: root}
}

func (lr *LeadRepository) leadsDir() string {
	return path.Join(lr.root, "leads")
}

// Leads returns all stored leads, newest first.
func (lr *LeadRepository) Leads(ctx context.Context) ([]*models.Lead, error) {
	root := os.DirFS(lr.leadsDir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list lead files: %w", err)
	}

	leads := make([]*models.Lead, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		leadID := file[:len(file)-5] // Remove .json extension

		lead, err := lr.LeadByID(ctx, leadID)
		if err != nil {
			if persistence.IsLeadNotFound(err) {
				continue
			}

			return nil, fmt.Errorf("failed to load lead %s: %w", leadID, err)
		}

		leads = append(leads, lead)
	}

	sort.Slice(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})

	return leads, nil
}

// LeadByID retrieves a lead by its ID from the file system.
func (lr *LeadRepository) LeadByID(_ context.Context, id string) (*models.Lead, error) {
	filePath := filepath.Clean(path.Join(lr.leadsDir(), id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewLeadError("LeadByID", id, persistence.ErrLeadNotFound)
		}

		return nil, fmt.Errorf("failed to fetch lead %s: %w", id, err)
	}

	var lead models.Lead

	err = json.Unmarshal(body, &lead)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal lead %s: %w", id, err)
	}

	return &lead, nil
}

// SaveLead writes a lead to the file system.
func (lr *LeadRepository) SaveLead(_ context.Context, lead *models.Lead) error {
	err := os.MkdirAll(lr.leadsDir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create leads directory: %w", err)
	}

	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(lead, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal lead %s: %w", lead.ID, err)
	}

	filePath := path.Join(lr.leadsDir(), lead.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// UpdateLead applies a partial update and writes the lead back.
func (lr *LeadRepository) UpdateLead(ctx context.Context, id string, patch models.LeadUpdate) (*models.Lead, error) {
	lead, err := lr.LeadByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(lead)

	err = lr.SaveLead(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead %s: %w", id, err)
	}

	return lead, nil
}

// DeleteLead removes a lead by its ID. Deleting a missing lead is not an
// error.
func (lr *LeadRepository) DeleteLead(_ context.Context, id string) error {
	filePath := path.Join(lr.leadsDir(), id+".json")

	err := os.Remove(filePath)

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete lead %s: %w", id, err)
	}

	return nil
}
