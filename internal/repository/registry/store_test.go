package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/sprsantander/padron/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "registro.json"), zap.NewNop())
}

func TestList_SeedsOnFirstUse(t *testing.T) {
	s := newTestStore(t)

	records, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected seed records on first use")
	}

	if _, err := os.Stat(s.path); err != nil {
		t.Errorf("seed must persist the roster file: %v", err)
	}

	// The seeded roster includes the neonatologist lookup target.
	found := false
	for _, r := range records {
		if r.Name == "Ana Pérez" && r.Registry == "RM123" {
			found = true
		}
	}
	if !found {
		t.Error("expected Ana Pérez (RM123) in the seed dataset")
	}
}

func TestSave_AssignsNextNumericID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	saved, err := s.Save(ctx, domain.Record{Name: "Nuevo Médico", Status: domain.StatusActive})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected an assigned id")
	}

	after, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Errorf("expected %d records, got %d", len(before)+1, len(after))
	}
}

func TestSave_UpdatesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Get(ctx, "1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	rec.City = "Floridablanca"
	if _, err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Get(ctx, "1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.City != "Floridablanca" {
		t.Errorf("expected updated city, got %q", got.City)
	}
}

func TestSave_UnknownIDIsAppended(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, domain.Record{ID: "imported-42", Name: "Importado"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID != "imported-42" {
		t.Errorf("explicit id must be kept, got %q", saved.ID)
	}

	if _, err := s.Get(ctx, "imported-42"); err != nil {
		t.Errorf("appended record not found: %v", err)
	}
}

func TestDelete_RemovesRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Delete(ctx, "1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := s.Get(ctx, "1")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.Delete(context.Background(), "no-such-id")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registro.json")
	ctx := context.Background()

	first := New(path, zap.NewNop())
	saved, err := first.Save(ctx, domain.Record{Name: "Persistente", Status: domain.StatusActive})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := New(path, zap.NewNop())
	got, err := second.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get from fresh store failed: %v", err)
	}
	if got.Name != "Persistente" {
		t.Errorf("expected persisted record, got %+v", got)
	}
}

func TestLoad_RejectsCorruptRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registro.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(path, zap.NewNop())
	if _, err := s.List(context.Background()); err == nil {
		t.Fatal("expected error for corrupt roster file")
	}
}
