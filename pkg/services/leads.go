package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/piazza-crm/leadflow/pkg/eventbus"
	"github.com/piazza-crm/leadflow/pkg/events"
	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/persistence"
)

// Leads manages the lead pipeline: creation, listing, partial updates, and
// deletion, with lifecycle notifications on the event bus.
type Leads struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewLeads creates a new lead service.
func NewLeads(p persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *Leads {
	return &Leads{
		persistence: p,
		publisher:   publisher,
		validator:   validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("module", "leads_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Leads) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// CreateLeadRequest contains the caller-supplied lead attributes.
type CreateLeadRequest struct {
	Name   string `json:"name"   validate:"required,min=1"`
	Email  string `json:"email"  validate:"required,email"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

// Create validates the request, stores a new lead in the `new` pipeline
// state, and broadcasts lead.created.
func (s *Leads) Create(ctx context.Context, req CreateLeadRequest) (*models.Lead, error) {
	err := s.validator.Struct(req)
	if err != nil {
		return nil, NewValidationError("CreateLead", "invalid_lead", err.Error(), ErrInvalidRequest)
	}

	lead := &models.Lead{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    models.LeadStatusNew,
		Source:    req.Source,
		CreatedAt: time.Now().UTC(),
	}

	err = s.persistence.LeadRepository().SaveLead(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.logger.Info("Lead created", "lead_id", lead.ID, "source", lead.Source)

	s.publish(ctx, lead.ID, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(events.LeadCreatedEvent),
		Lead:      lead,
	})

	return lead, nil
}

// List returns all leads, newest first.
func (s *Leads) List(ctx context.Context) ([]*models.Lead, error) {
	leads, err := s.persistence.LeadRepository().Leads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	return leads, nil
}

// Get returns a lead by id.
func (s *Leads) Get(ctx context.Context, id string) (*models.Lead, error) {
	return s.persistence.LeadRepository().LeadByID(ctx, id)
}

// Update applies a partial update and broadcasts lead.updated.
func (s *Leads) Update(ctx context.Context, id string, patch models.LeadUpdate) (*models.Lead, error) {
	err := s.validator.Struct(patch)
	if err != nil {
		return nil, NewValidationError("UpdateLead", "invalid_patch", err.Error(), ErrInvalidRequest)
	}

	lead, err := s.persistence.LeadRepository().UpdateLead(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, id, events.LeadUpdated{
		BaseEvent: events.NewBaseEvent(events.LeadUpdatedEvent),
		LeadID:    id,
		Changed:   patch,
	})

	return lead, nil
}

// Delete removes a lead.
func (s *Leads) Delete(ctx context.Context, id string) error {
	return s.persistence.LeadRepository().DeleteLead(ctx, id)
}

func (s *Leads) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.Publish(ctx, key, event)
	if err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
