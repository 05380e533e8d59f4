package mocks

import (
	"context"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockLeadRepository is a mock implementation of persistence.LeadRepository.
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Leads(ctx context.Context) ([]*models.Lead, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Lead), args.Error(1)
}

func (m *MockLeadRepository) LeadByID(ctx context.Context, id string) (*models.Lead, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadRepository) SaveLead(ctx context.Context, lead *models.Lead) error {
	args := m.Called(ctx, lead)

	return args.Error(0)
}

func (m *MockLeadRepository) UpdateLead(ctx context.Context, id string, patch models.LeadUpdate) (*models.Lead, error) {
	args := m.Called(ctx, id, patch)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadRepository) DeleteLead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockDefinitionStore is a mock implementation of persistence.DefinitionStore.
type MockDefinitionStore struct {
	mock.Mock
}

func (m *MockDefinitionStore) SaveDefinition(ctx context.Context, def *models.WorkflowDefinition) error {
	args := m.Called(ctx, def)

	return args.Error(0)
}

func (m *MockDefinitionStore) LoadDefinition(ctx context.Context) (*models.WorkflowDefinition, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowDefinition), args.Error(1)
}

func (m *MockDefinitionStore) ClearDefinition(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
