package registry

import (
	"context"

	"github.com/sprsantander/padron/internal/domain"
)

// RecordStore owns the roster records.
type RecordStore interface {
	List(ctx context.Context) ([]domain.Record, error)
	Get(ctx context.Context, id string) (domain.Record, error)
	Save(ctx context.Context, rec domain.Record) (domain.Record, error)
	Delete(ctx context.Context, id string) error
}

// Synchronizer rebuilds the vector index after a mutation.
type Synchronizer interface {
	Sync(ctx context.Context) error
}
