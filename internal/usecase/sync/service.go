// Package sync rebuilds the vector index from the registry.
//
// Every rebuild is a full drop-and-recreate: a fresh generation is built from
// the complete roster, the reader pointer is swapped, and the old generation
// is dropped. One record edit therefore costs one full rebuild. Generations
// mean readers only ever observe a complete index, old or new.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"go.uber.org/zap"

	"github.com/sprsantander/padron/internal/domain"
	"github.com/sprsantander/padron/internal/repository/index"
)

// Service synchronizes the vector index with the registry.
type Service struct {
	records RecordLister
	index   IndexRepository
	embed   Embedder
	logger  *zap.Logger

	mu gosync.Mutex // serializes rebuilds
}

// New creates a synchronizer. embed must carry the document framing.
func New(records RecordLister, idx IndexRepository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{records: records, index: idx, embed: embed, logger: logger}
}

// Sync rebuilds the index from the current roster. Idempotent and safe to call
// when no index exists yet. A record whose embedding fails is excluded from
// the new generation; if every record fails the rebuild is aborted and the
// previous generation is left untouched.
func (s *Service) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A rebuild that has started runs to completion even if the triggering
	// request goes away; a half-built generation is never swapped in.
	ctx = context.WithoutCancel(ctx)

	records, err := s.records.List(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	entries := make([]index.Entry, 0, len(records))
	failed := 0
	for _, rec := range records {
		res, err := s.embed.Embed(ctx, rec.DocumentText())
		if err != nil {
			failed++
			s.logger.Warn("Skipping record after embedding failure",
				zap.String("record_id", rec.ID),
				zap.String("name", rec.Name),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, index.Entry{Record: rec, Vector: res.Embedding})
	}

	if len(records) > 0 && len(entries) == 0 {
		return fmt.Errorf("all %d records failed to embed: %w", len(records), domain.ErrEmbeddingProvider)
	}

	prev, err := s.index.Current(ctx)
	if err != nil && !errors.Is(err, domain.ErrIndexUnavailable) {
		return fmt.Errorf("resolve current generation: %w", err)
	}
	next := prev + 1

	if err := s.index.BuildGeneration(ctx, next, entries); err != nil {
		return fmt.Errorf("build generation: %w", err)
	}
	if err := s.index.Swap(ctx, next); err != nil {
		return fmt.Errorf("swap generation: %w", err)
	}

	s.logger.Info("Index synchronized",
		zap.Int("generation", next),
		zap.Int("indexed", len(entries)),
		zap.Int("skipped", failed),
	)

	if prev > 0 {
		if err := s.index.DropGeneration(ctx, prev); err != nil {
			// The new generation is already live; stale keys are only garbage.
			s.logger.Warn("Failed to drop previous generation",
				zap.Int("generation", prev), zap.Error(err))
		}
	}

	return nil
}
