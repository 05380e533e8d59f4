package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

// LeadRepository handles lead operations against Redis.
type LeadRepository struct {
	client *redis.Client
	logger *slog.Logger
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(client *redis.Client, logger *slog.Logger) *LeadRepository {
	return &LeadRepository{
		client: client,
		logger: logger.With("module", "redis.leads"),
	}
}

func leadKey(id string) string {
	return leadKeyPrefix + id
}

// Leads returns all stored leads, newest first.
func (lr *LeadRepository) Leads(ctx context.Context) ([]*models.Lead, error) {
	var (
		leads  []*models.Lead
		cursor uint64
	)

	for {
		keys, next, err := lr.client.Scan(ctx, cursor, leadKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead keys: %w", err)
		}

		for _, key := range keys {
			body, err := lr.client.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}

				return nil, fmt.Errorf("failed to fetch lead %s: %w", key, err)
			}

			var lead models.Lead

			err = json.Unmarshal(body, &lead)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal lead %s: %w", key, err)
			}

			leads = append(leads, &lead)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Slice(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})

	return leads, nil
}

// LeadByID retrieves a lead by its ID.
func (lr *LeadRepository) LeadByID(ctx context.Context, id string) (*models.Lead, error) {
	body, err := lr.client.Get(ctx, leadKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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

// SaveLead writes a lead to Redis.
func (lr *LeadRepository) SaveLead(ctx context.Context, lead *models.Lead) error {
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to marshal lead %s: %w", lead.ID, err)
	}

	err = lr.client.Set(ctx, leadKey(lead.ID), body, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to save lead %s: %w", lead.ID, err)
	}

	return nil
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
func (lr *LeadRepository) DeleteLead(ctx context.Context, id string) error {
	err := lr.client.Del(ctx, leadKey(id)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete lead %s: %w", id, err)
	}

	return nil
}
