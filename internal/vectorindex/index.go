package vectorindex

import (
	"context"
	"math"

	"docqa/internal/domain"
)

// Index stores (vector, payload) records and answers nearest-neighbor
// queries under a tenant filter. All backends share these semantics:
//
//   - Init fixes the dimension; it is idempotent when the dimension matches
//     existing state and fails with domain.ErrDimensionConflict otherwise.
//   - Add appends a batch atomically from the caller's perspective; a single
//     wrong-length vector rejects the whole batch with
//     domain.ErrDimensionMismatch.
//   - Search returns at most TopK results for the query's tenant (and
//     language, when set) with similarity >= Threshold, ordered by
//     descending score, ties broken by insertion order. Zero matches is an
//     empty slice, never an error.
//   - ClearTenant removes every record for the tenant and returns the count;
//     clearing an unknown tenant returns 0.
//   - Reset erases every tenant's records while keeping the configured
//     dimension. It is the only operation allowed to rebuild backend storage
//     wholesale; tenant clears never are.
type Index interface {
	Init(ctx context.Context, dimension int) error
	Add(ctx context.Context, records []domain.VectorRecord) error
	Search(ctx context.Context, q domain.Query) ([]domain.Result, error)
	ClearTenant(ctx context.Context, tenantID string) (int, error)
	Reset(ctx context.Context) error
	Stats(ctx context.Context) (domain.Stats, error)
}

// Normalize scales v to unit L2 norm in place. It reports false and leaves v
// untouched when the norm is zero, in which case similarity against
// everything is defined as 0.
func Normalize(v []float32) bool {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return false
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return true
}

// Dot is the inner product of two equal-length vectors.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
