// Package flat is an exact, in-process vector index. Similarity is the inner
// product of L2-normalized vectors (cosine), computed against every stored
// record. Tenant clears rebuild the backing slices instead of tombstoning,
// an accepted O(n) cost that keeps the structure free of dead slots.
package flat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"docqa/internal/domain"
	"docqa/internal/vectorindex"
)

const defaultTopK = 5

// Index keeps vectors and a parallel payload sequence; a record's position is
// its implicit id. Add and ClearTenant take the write lock for their whole
// duration; searches may run concurrently with each other.
type Index struct {
	mu        sync.RWMutex
	store     *store
	dimension int
	vectors   [][]float32
	payloads  []domain.Chunk
}

// New opens (or creates) a flat index persisted under dir. Existing
// artifacts are loaded eagerly; a vector/payload count mismatch is
// domain.ErrIndexCorrupt, not a silent truncation.
func New(dir string) (*Index, error) {
	st, err := newStore(dir)
	if err != nil {
		return nil, err
	}
	idx := &Index{store: st}
	snap, payloads, ok, err := st.load()
	if err != nil {
		return nil, err
	}
	if ok {
		idx.dimension = snap.Dimension
		idx.vectors = snap.Vectors
		idx.payloads = payloads
	}
	return idx, nil
}

func (idx *Index) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	switch idx.dimension {
	case 0:
		idx.dimension = dimension
		return idx.persistLocked()
	case dimension:
		return nil
	default:
		return fmt.Errorf("%w: have %d, requested %d", domain.ErrDimensionConflict, idx.dimension, dimension)
	}
}

// Add appends a batch. Vectors are copied and L2-normalized at insertion so
// search reduces to an inner product. The batch is validated before any
// mutation: one wrong-length vector rejects it whole.
func (idx *Index) Add(_ context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.dimension == 0 {
		return fmt.Errorf("index not initialized")
	}
	for i, r := range records {
		if len(r.Vector) != idx.dimension {
			return fmt.Errorf("%w: record %d has %d components, index has %d",
				domain.ErrDimensionMismatch, i, len(r.Vector), idx.dimension)
		}
	}
	for _, r := range records {
		v := make([]float32, len(r.Vector))
		copy(v, r.Vector)
		vectorindex.Normalize(v)
		idx.vectors = append(idx.vectors, v)
		idx.payloads = append(idx.payloads, r.Payload)
	}
	return idx.persistLocked()
}

func (idx *Index) Search(_ context.Context, q domain.Query) ([]domain.Result, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	query := make([]float32, len(q.Vector))
	copy(query, q.Vector)
	// A zero-norm query scores 0 against everything; never divide by zero.
	vectorindex.Normalize(query)

	topK := q.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	type hit struct {
		pos   int
		score float32
	}
	var hits []hit
	for i, v := range idx.vectors {
		p := idx.payloads[i]
		if p.TenantID != q.TenantID {
			continue
		}
		if q.Language != "" && !metadataLanguageIs(p.Metadata, q.Language) {
			continue
		}
		if len(v) != len(query) {
			continue
		}
		score := vectorindex.Dot(query, v)
		if score < q.Threshold {
			continue
		}
		hits = append(hits, hit{pos: i, score: score})
	}
	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if len(hits) > topK {
		hits = hits[:topK]
	}

	results := make([]domain.Result, 0, len(hits))
	for _, h := range hits {
		p := idx.payloads[h.pos]
		results = append(results, domain.Result{
			Text:         p.Text,
			DocumentName: p.DocumentName,
			ChunkIndex:   p.ChunkIndex,
			Score:        h.score,
			Metadata:     p.Metadata,
		})
	}
	return results, nil
}

// ClearTenant removes every record owned by tenantID by rebuilding the
// backing slices from the survivors, then persists the rebuilt state.
// Clearing an unknown tenant is a no-op returning 0.
func (idx *Index) ClearTenant(_ context.Context, tenantID string) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	kept := 0
	for i := range idx.payloads {
		if idx.payloads[i].TenantID == tenantID {
			continue
		}
		idx.vectors[kept] = idx.vectors[i]
		idx.payloads[kept] = idx.payloads[i]
		kept++
	}
	removed := len(idx.payloads) - kept
	if removed == 0 {
		return 0, nil
	}
	idx.vectors = idx.vectors[:kept]
	idx.payloads = idx.payloads[:kept]
	if err := idx.persistLocked(); err != nil {
		return removed, err
	}
	return removed, nil
}

// Reset drops every record across all tenants and persists the empty state.
// The dimension survives, so the index accepts new batches immediately.
func (idx *Index) Reset(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors = nil
	idx.payloads = nil
	return idx.persistLocked()
}

func (idx *Index) Stats(_ context.Context) (domain.Stats, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return domain.Stats{
		TotalVectors: len(idx.vectors),
		Dimension:    idx.dimension,
		Backend:      "flat",
	}, nil
}

func (idx *Index) persistLocked() error {
	return idx.store.save(snapshot{Dimension: idx.dimension, Vectors: idx.vectors}, idx.payloads)
}

func metadataLanguageIs(meta map[string]any, lang string) bool {
	if meta == nil {
		return false
	}
	v, ok := meta[domain.MetaLanguage].(string)
	return ok && v == lang
}
