package retrieve

import (
	"context"

	"github.com/sprsantander/padron/internal/domain"
)

// IndexSearcher searches the current index generation.
type IndexSearcher interface {
	SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.Match, error)
}

// Synchronizer rebuilds the index; used for the lazy cold-start rebuild.
type Synchronizer interface {
	Sync(ctx context.Context) error
}

// Embedder vectorizes query text (query framing applied by the caller's
// decorator chain).
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
