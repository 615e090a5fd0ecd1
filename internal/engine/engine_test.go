package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Name() string   { return "fake" }
func (f *fakeEmbedder) Dimension() int { return len(f.vector) }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, len(f.vector))
		copy(v, f.vector)
		out[i] = v
	}
	return out, nil
}

type fakeIndex struct {
	lastQuery domain.Query
	results   []domain.Result
	err       error
	searched  bool
}

func (f *fakeIndex) Init(context.Context, int) error                  { return nil }
func (f *fakeIndex) Add(context.Context, []domain.VectorRecord) error { return nil }
func (f *fakeIndex) ClearTenant(context.Context, string) (int, error) { return 0, nil }
func (f *fakeIndex) Reset(context.Context) error                      { return nil }
func (f *fakeIndex) Stats(context.Context) (domain.Stats, error) {
	return domain.Stats{}, nil
}

func (f *fakeIndex) Search(_ context.Context, q domain.Query) ([]domain.Result, error) {
	f.searched = true
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestSearch_NormalizesQueryVector(t *testing.T) {
	idx := &fakeIndex{results: []domain.Result{{Text: "hello", Score: 0.9}}}
	e := New(&fakeEmbedder{vector: []float32{3, 0, 0}}, idx, nil)

	res, err := e.Search(context.Background(), "hello", "u1", 3, 0.5, "en")
	require.NoError(t, err)
	require.Len(t, res, 1)

	require.InDelta(t, 1.0, idx.lastQuery.Vector[0], 1e-6)
	require.Equal(t, "u1", idx.lastQuery.TenantID)
	require.Equal(t, 3, idx.lastQuery.TopK)
	require.InDelta(t, 0.5, idx.lastQuery.Threshold, 1e-6)
	require.Equal(t, "en", idx.lastQuery.Language)
}

func TestSearch_ZeroNormQueryReturnsEmpty(t *testing.T) {
	idx := &fakeIndex{}
	e := New(&fakeEmbedder{vector: []float32{0, 0, 0}}, idx, nil)

	res, err := e.Search(context.Background(), "anything", "u1", 5, 0.7, "")
	require.NoError(t, err)
	require.Empty(t, res)
	require.False(t, idx.searched, "zero-norm query must not reach the index")
}

func TestSearch_EmbedderFailure(t *testing.T) {
	e := New(&fakeEmbedder{err: errors.New("rate limited")}, &fakeIndex{}, nil)

	_, err := e.Search(context.Background(), "q", "u1", 5, 0.7, "")
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestSearch_IndexFailure(t *testing.T) {
	idx := &fakeIndex{err: errors.New("connection refused")}
	e := New(&fakeEmbedder{vector: []float32{1, 0, 0}}, idx, nil)

	_, err := e.Search(context.Background(), "q", "u1", 5, 0.7, "")
	require.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestSearch_DefaultsTopK(t *testing.T) {
	idx := &fakeIndex{}
	e := New(&fakeEmbedder{vector: []float32{1, 0, 0}}, idx, nil)

	_, err := e.Search(context.Background(), "q", "u1", 0, 0, "")
	require.NoError(t, err)
	require.Equal(t, defaultTopK, idx.lastQuery.TopK)
}
