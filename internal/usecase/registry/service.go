// Package registry exposes roster administration. Every mutation triggers a
// full index rebuild before it is reported complete to the caller, so the
// index never lags the roster as a steady state.
package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/sprsantander/padron/internal/domain"
)

// Service coordinates roster mutations with index synchronization.
type Service struct {
	store  RecordStore
	syncer Synchronizer
}

// New creates a registry service.
func New(store RecordStore, syncer Synchronizer) *Service {
	return &Service{store: store, syncer: syncer}
}

// List returns the full roster.
func (s *Service) List(ctx context.Context) ([]domain.Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return records, nil
}

// Save creates or updates a record, then rebuilds the index.
func (s *Service) Save(ctx context.Context, rec domain.Record) (domain.Record, error) {
	if err := validate(rec); err != nil {
		return domain.Record{}, err
	}

	saved, err := s.store.Save(ctx, rec)
	if err != nil {
		return domain.Record{}, fmt.Errorf("save record: %w", err)
	}

	if err := s.syncer.Sync(ctx); err != nil {
		return domain.Record{}, fmt.Errorf("sync index after save: %w", err)
	}
	return saved, nil
}

// Delete removes a record, then rebuilds the index.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	if err := s.syncer.Sync(ctx); err != nil {
		return fmt.Errorf("sync index after delete: %w", err)
	}
	return nil
}

func validate(rec domain.Record) error {
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("record name is required: %w", domain.ErrValidation)
	}
	switch rec.Status {
	case domain.StatusActive, domain.StatusInactive, "":
	default:
		return fmt.Errorf("invalid status %q: %w", rec.Status, domain.ErrValidation)
	}
	return nil
}
