// Package engine orchestrates query-time retrieval: embed the query text,
// normalize the vector, and delegate to the active vector index. The index's
// ordering is authoritative; the engine never re-ranks.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docqa/internal/domain"
	"docqa/internal/embedding"
	"docqa/internal/vectorindex"
)

const defaultTopK = 5

// Engine is the single entry point consumers use for retrieval. It owns no
// long-lived state beyond handles to its collaborators.
type Engine struct {
	embedder embedding.Embedder
	index    vectorindex.Index
	logger   *zap.Logger
}

func New(embedder embedding.Embedder, index vectorindex.Index, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{embedder: embedder, index: index, logger: logger}
}

// Search embeds the query text and returns the tenant's most similar chunks.
// Embedding failures surface as domain.ErrEmbeddingUnavailable and index
// failures as domain.ErrIndexUnavailable; neither is retried here — retry
// policy belongs to the caller. An empty result always means "no matches".
func (e *Engine) Search(ctx context.Context, queryText, tenantID string, topK int, threshold float32, language string) ([]domain.Result, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	vectors, err := e.embedder.Embed(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one query", domain.ErrEmbeddingUnavailable, len(vectors))
	}

	query := vectors[0]
	// Stored vectors are unit length; normalizing the query makes the inner
	// product a cosine. A zero-norm query has similarity 0 against
	// everything, so there is nothing to search.
	if !vectorindex.Normalize(query) {
		e.logger.Warn("query embedding has zero norm, returning no matches",
			zap.String("tenant_id", tenantID))
		return []domain.Result{}, nil
	}

	results, err := e.index.Search(ctx, domain.Query{
		Vector:    query,
		TenantID:  tenantID,
		TopK:      topK,
		Threshold: threshold,
		Language:  language,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	e.logger.Debug("search completed",
		zap.String("tenant_id", tenantID),
		zap.Int("top_k", topK),
		zap.Int("results", len(results)))
	return results, nil
}
