package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/persistence"
)

// LeadRepository handles lead operations against PostgreSQL.
type LeadRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(db *sql.DB, logger *slog.Logger) *LeadRepository {
	return &LeadRepository{
		db:     db,
		logger: logger.With("module", "postgresql.leads"),
	}
}

// Leads returns all stored leads, newest first.
func (lr *LeadRepository) Leads(ctx context.Context) ([]*models.Lead, error) {
	query := `
		SELECT id, name, email, phone, status, source, created_at
		FROM leads
		ORDER BY created_at DESC`

	rows, err := lr.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var leads []*models.Lead

	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}

		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}

	return leads, nil
}

// LeadByID retrieves a lead by its ID.
func (lr *LeadRepository) LeadByID(ctx context.Context, id string) (*models.Lead, error) {
	query := `
		SELECT id, name, email, phone, status, source, created_at
		FROM leads
		WHERE id = $1`

	row := lr.db.QueryRowContext(ctx, query, id)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewLeadError("LeadByID", id, persistence.ErrLeadNotFound)
		}

		return nil, fmt.Errorf("failed to fetch lead %s: %w", id, err)
	}

	return lead, nil
}

// SaveLead inserts or replaces a lead.
func (lr *LeadRepository) SaveLead(ctx context.Context, lead *models.Lead) error {
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO leads (id, name, email, phone, status, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			status = EXCLUDED.status,
			source = EXCLUDED.source`

	_, err := lr.db.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Phone, lead.Status, lead.Source, lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save lead %s: %w", lead.ID, err)
	}

	return nil
}

// UpdateLead applies a partial update and returns the updated lead.
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
func (lr *LeadRepository) DeleteLead(ctx context.Context, id string) error {
	_, err := lr.db.ExecContext(ctx, "DELETE FROM leads WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete lead %s: %w", id, err)
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (*models.Lead, error) {
	var (
		lead   models.Lead
		phone  sql.NullString
		source sql.NullString
	)

	err := row.Scan(&lead.ID, &lead.Name, &lead.Email, &phone, &lead.Status, &source, &lead.CreatedAt)
	if err != nil {
		return nil, err
	}

	lead.Phone = phone.String
	lead.Source = source.String

	return &lead, nil
}
