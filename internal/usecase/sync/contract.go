package sync

import (
	"context"

	"github.com/sprsantander/padron/internal/domain"
	"github.com/sprsantander/padron/internal/repository/index"
)

// RecordLister reads the full current roster.
type RecordLister interface {
	List(ctx context.Context) ([]domain.Record, error)
}

// IndexRepository manages index generations.
type IndexRepository interface {
	Current(ctx context.Context) (int, error)
	BuildGeneration(ctx context.Context, gen int, entries []index.Entry) error
	Swap(ctx context.Context, gen int) error
	DropGeneration(ctx context.Context, gen int) error
}

// Embedder vectorizes document text (document framing applied by the caller's
// decorator chain).
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
