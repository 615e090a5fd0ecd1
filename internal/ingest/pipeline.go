// Package ingest turns an uploaded document into indexed vector records:
// extract text, detect its language, window it into chunks, embed the chunk
// texts, and add the batch to the active index.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/embedding"
	"docqa/internal/language"
	"docqa/internal/vectorindex"
)

// Summary describes one completed ingestion.
type Summary struct {
	DocumentName string `json:"document_name"`
	Chunks       int    `json:"chunks"`
	TotalTokens  int    `json:"total_tokens"`
	Language     string `json:"language"`
}

type Pipeline struct {
	chunker  *chunker.TokenChunker
	detector *language.Detector
	embedder embedding.Embedder
	index    vectorindex.Index
	logger   *zap.Logger
}

func NewPipeline(c *chunker.TokenChunker, d *language.Detector, e embedding.Embedder, idx vectorindex.Index, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{chunker: c, detector: d, embedder: e, index: idx, logger: logger}
}

// IngestDocument processes one uploaded file for a tenant. Documents with no
// extractable text are rejected with domain.ErrEmptyDocument before any
// embedding or index call.
func (p *Pipeline) IngestDocument(ctx context.Context, tenantID, documentName string, data []byte) (Summary, error) {
	text, err := ExtractText(documentName, data)
	if err != nil {
		return Summary{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Summary{}, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, documentName)
	}

	lang := p.detector.Detect(text)
	chunks := p.chunker.Chunk(tenantID, documentName, text, lang)
	if len(chunks) == 0 {
		return Summary{}, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, documentName)
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	totalTokens, _ := chunks[0].Metadata[domain.MetaTotalTokens].(int)
	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		return Summary{}, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i := range chunks {
		records[i] = domain.VectorRecord{
			ID:      uuid.NewString(),
			Vector:  vectors[i],
			Payload: chunks[i],
		}
	}
	if err := p.index.Add(ctx, records); err != nil {
		return Summary{}, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	p.logger.Info("document ingested",
		zap.String("tenant_id", tenantID),
		zap.String("document", documentName),
		zap.Int("chunks", len(chunks)),
		zap.String("language", lang))

	return Summary{
		DocumentName: documentName,
		Chunks:       len(chunks),
		TotalTokens:  totalTokens,
		Language:     lang,
	}, nil
}
