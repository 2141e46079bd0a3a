package calculator

import (
	"context"

	"github.com/emiliopalmerini/bayesab/internal/domain"
)

// MockReadoutRepository is a mock implementation of ports.ReadoutRepository for testing.
type MockReadoutRepository struct {
	CreateFunc  func(ctx context.Context, readout *domain.Readout) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Readout, error)
	ListFunc    func(ctx context.Context, limit int) ([]*domain.Readout, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockReadoutRepository) Create(ctx context.Context, readout *domain.Readout) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, readout)
	}
	return nil
}

func (m *MockReadoutRepository) GetByID(ctx context.Context, id string) (*domain.Readout, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReadoutRepository) List(ctx context.Context, limit int) ([]*domain.Readout, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockReadoutRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
