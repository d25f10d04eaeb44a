package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/sprsantander/padron/internal/domain"
)

// Store is the file-backed registry of professional records. The roster is a
// small, frequently edited JSON file; every read loads it in full and every
// mutation rewrites it atomically. First use seeds the file from the bundled
// dataset.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// New creates a registry store persisting to path.
func New(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// List returns all records in the roster.
func (s *Store) List(ctx context.Context) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns a single record by id.
func (s *Store) Get(ctx context.Context, id string) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return domain.Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Record{}, domain.ErrRecordNotFound
}

// Save creates or updates a record. A record without an id gets the next
// numeric id. An unknown non-empty id is appended as-is, matching the
// admin panel's import behavior.
func (s *Store) Save(ctx context.Context, rec domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return domain.Record{}, err
	}

	if rec.ID == "" {
		rec.ID = nextID(records)
		records = append(records, rec)
	} else {
		replaced := false
		for i := range records {
			if records[i].ID == rec.ID {
				records[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			records = append(records, rec)
		}
	}

	if err := s.persist(records); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	filtered := records[:0]
	for _, r := range records {
		if r.ID != id {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == len(records) {
		return domain.ErrRecordNotFound
	}

	return s.persist(filtered)
}

// load reads the roster file, seeding it on first use.
func (s *Store) load() ([]domain.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read roster %s: %w", s.path, err)
		}
		s.logger.Info("Roster file missing, seeding initial dataset", zap.String("path", s.path))
		if err := s.seed(); err != nil {
			return nil, err
		}
		data = seedData
	}

	var dtos []recordDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", s.path, err)
	}

	records := make([]domain.Record, len(dtos))
	for i, d := range dtos {
		records[i] = d.toDomain()
	}
	return records, nil
}

func (s *Store) seed() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create roster dir: %w", err)
	}
	if err := os.WriteFile(s.path, seedData, 0o644); err != nil {
		return fmt.Errorf("seed roster %s: %w", s.path, err)
	}
	return nil
}

// persist rewrites the roster file atomically (temp file + rename).
func (s *Store) persist(records []domain.Record) error {
	dtos := make([]recordDTO, len(records))
	for i, r := range records {
		dtos[i] = dtoFromDomain(r)
	}

	data, err := json.MarshalIndent(dtos, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create roster dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace roster: %w", err)
	}
	return nil
}

// nextID returns max(numeric ids)+1 as a string, "1" for an empty roster.
func nextID(records []domain.Record) string {
	maxID := 0
	for _, r := range records {
		if n, err := strconv.Atoi(r.ID); err == nil && n > maxID {
			maxID = n
		}
	}
	return strconv.Itoa(maxID + 1)
}
