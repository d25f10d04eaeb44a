package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sprsantander/padron/internal/db"
	"github.com/sprsantander/padron/internal/domain"
)

// currentKey holds the generation number of the index readers should use.
const currentKey = domain.KeyPrefix + "reg:current"

// Entry is one record plus its document vector, ready to be indexed.
type Entry struct {
	Record domain.Record
	Vector []float32
}

// store is the consumer interface for index operations (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	DelMulti(ctx context.Context, keys []string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig holds optional HNSW build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo manages generation-addressed vector index contents. A generation is one
// complete build of the index; readers resolve the current generation pointer
// and only ever search a fully populated one.
type Repo struct {
	store store
	dim   int
	hnsw  HNSWConfig
}

// New creates an index repository for vectors of the given dimension.
func New(s store, dim int) *Repo {
	return &Repo{store: s, dim: dim}
}

// WithHNSW switches the vector field from FLAT to HNSW with the given parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// Current returns the generation readers should search.
// Returns domain.ErrIndexUnavailable when no generation has been built yet.
func (r *Repo) Current(ctx context.Context) (int, error) {
	data, err := r.store.Get(ctx, currentKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, domain.ErrIndexUnavailable
		}
		return 0, fmt.Errorf("get current generation: %w", err)
	}
	gen, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("parse current generation %q: %w", data, err)
	}
	return gen, nil
}

// BuildGeneration writes all entries under the generation's key prefix and
// creates its FT index. An empty entry set still creates the index, so an
// empty roster yields an empty (but searchable) generation.
//
// A rebuild retried after a failed swap reuses the generation number, so
// entries from the earlier attempt may still sit under this prefix. They are
// dropped first; a record removed from the roster between attempts must not
// survive into the new generation.
func (r *Repo) BuildGeneration(ctx context.Context, gen int, entries []Entry) error {
	if err := r.DropGeneration(ctx, gen); err != nil {
		return fmt.Errorf("clear generation %d leftovers: %w", gen, err)
	}

	items := make([]db.HashSetItem, len(entries))
	for i, e := range entries {
		items[i] = db.HashSetItem{
			Key:    entryKey(gen, e.Record.ID),
			Fields: fieldsFromEntry(e),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("write generation %d entries: %w", gen, err)
	}

	def := &db.IndexDefinition{
		Name:     indexName(gen),
		Prefixes: []string{genPrefix(gen)},
		Fields: []db.IndexField{
			{
				Name:              "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        vectorAlgo(r.hnsw),
				VectorDim:         r.dim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create generation %d index: %w", gen, err)
	}
	return nil
}

// Swap atomically repoints readers at the given generation.
func (r *Repo) Swap(ctx context.Context, gen int) error {
	if err := r.store.Set(ctx, currentKey, []byte(strconv.Itoa(gen))); err != nil {
		return fmt.Errorf("swap to generation %d: %w", gen, err)
	}
	return nil
}

// DropGeneration removes a generation's FT index and all of its entries.
func (r *Repo) DropGeneration(ctx context.Context, gen int) error {
	if err := r.store.DropIndex(ctx, indexName(gen)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop generation %d index: %w", gen, err)
	}

	keys, err := r.store.Scan(ctx, genPrefix(gen)+"*")
	if err != nil {
		return fmt.Errorf("scan generation %d keys: %w", gen, err)
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("delete generation %d keys: %w", gen, err)
	}
	return nil
}

// SearchKNN returns the k nearest entries of the current generation, ordered
// by descending similarity. Returns domain.ErrIndexUnavailable when no
// generation exists.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.Match, error) {
	gen, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}

	q := &db.KNNQuery{
		IndexName:    indexName(gen),
		Vector:       vector,
		K:            k,
		ReturnFields: payloadFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, domain.ErrIndexUnavailable
		}
		return nil, fmt.Errorf("search knn generation %d: %w", gen, err)
	}

	matches := make([]domain.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		matches = append(matches, domain.Match{
			Record: recordFromFields(entry.Fields, strings.TrimPrefix(entry.Key, genPrefix(gen))),
			Score:  entry.Score,
		})
	}

	// The backend sorts by distance already; keep the ordering contract
	// independent of backend behavior.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func vectorAlgo(cfg HNSWConfig) db.VectorAlgorithm {
	if cfg.M > 0 || cfg.EFConstruct > 0 {
		return db.VectorHNSW
	}
	return db.VectorFlat
}

func genPrefix(gen int) string {
	return fmt.Sprintf("%sreg:g%d:", domain.KeyPrefix, gen)
}

func indexName(gen int) string {
	return fmt.Sprintf("%sreg:g%d-idx", domain.KeyPrefix, gen)
}

func entryKey(gen int, id string) string {
	return genPrefix(gen) + id
}
