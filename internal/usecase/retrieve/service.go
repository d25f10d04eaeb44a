// Package retrieve turns a user query into a ranked context set.
package retrieve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sprsantander/padron/internal/domain"
)

// Service retrieves the records most similar to a query.
type Service struct {
	index  IndexSearcher
	syncer Synchronizer
	embed  Embedder
	logger *zap.Logger
}

// New creates a retriever. embed must carry the query framing.
func New(idx IndexSearcher, syncer Synchronizer, embed Embedder, logger *zap.Logger) *Service {
	return &Service{index: idx, syncer: syncer, embed: embed, logger: logger}
}

// Retrieve returns up to k matches ordered by descending similarity. An empty
// index yields an empty slice. When no index generation exists yet, one
// rebuild is triggered lazily, so the first query after a cold start pays the
// rebuild cost.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]domain.Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}

	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	matches, err := s.index.SearchKNN(ctx, res.Embedding, k)
	if errors.Is(err, domain.ErrIndexUnavailable) {
		s.logger.Info("No index generation, triggering lazy rebuild")
		if err := s.syncer.Sync(ctx); err != nil {
			return nil, fmt.Errorf("lazy index rebuild: %w", err)
		}
		matches, err = s.index.SearchKNN(ctx, res.Embedding, k)
	}
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	return matches, nil
}
