package repository

import (
	"context"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

// ProjectStore is the durable per-project record store. One record per
// project, keyed by its id. Implementations: Redis (default) and Postgres.
type ProjectStore interface {
	Save(ctx context.Context, p *domain.Project) error
	Load(ctx context.Context, id string) (*domain.Project, error)
	// LoadAll returns every stored project sorted by target date descending.
	LoadAll(ctx context.Context) ([]domain.Project, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}
