package ports

import (
	"context"

	"github.com/emiliopalmerini/bayesab/internal/domain"
)

type ReadoutRepository interface {
	Create(ctx context.Context, readout *domain.Readout) error
	GetByID(ctx context.Context, id string) (*domain.Readout, error)
	List(ctx context.Context, limit int) ([]*domain.Readout, error)
	Delete(ctx context.Context, id string) error
}
