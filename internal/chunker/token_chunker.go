package chunker

import (
	"strings"
	"time"

	"docqa/internal/domain"
	"docqa/internal/tokenizer"
)

// TokenChunker splits text into overlapping token-bounded windows. Each
// window's text is the decoded token slice, not a substring of the input, so
// the stored chunk is exactly what the codec round-trips.
type TokenChunker struct {
	codec     tokenizer.Codec
	chunkSize int
	overlap   int
}

// NewTokenChunker validates the window policy up front: an overlap that is
// negative or not smaller than the chunk size can never terminate and is a
// configuration error, not a per-call one.
func NewTokenChunker(codec tokenizer.Codec, chunkSize, overlap int) (*TokenChunker, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, domain.ErrInvalidChunkConfig
	}
	return &TokenChunker{codec: codec, chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured maximum tokens per chunk.
func (c *TokenChunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured token overlap between adjacent chunks.
func (c *TokenChunker) Overlap() int { return c.overlap }

// Chunk tokenizes text and slices it into windows of at most chunkSize
// tokens, each window starting overlap tokens before the previous one ended.
// Empty input yields no chunks. The language tag is recorded in chunk
// metadata; pass "" when unknown.
func (c *TokenChunker) Chunk(tenantID, documentName, text, language string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	tokens := c.codec.Encode(text)
	total := len(tokens)
	if total == 0 {
		return nil
	}
	now := time.Now().UTC()

	if total <= c.chunkSize {
		return []domain.Chunk{{
			TenantID:     tenantID,
			DocumentName: documentName,
			ChunkIndex:   0,
			Text:         c.codec.Decode(tokens),
			TokenCount:   total,
			CreatedAt:    now,
			Metadata: map[string]any{
				domain.MetaTotalTokens: total,
				domain.MetaChunkMethod: domain.MethodSingleChunk,
				domain.MetaLanguage:    language,
			},
		}}
	}

	var chunks []domain.Chunk
	start := 0
	for start < total {
		end := start + c.chunkSize
		if end > total {
			end = total
		}
		window := tokens[start:end]
		chunks = append(chunks, domain.Chunk{
			TenantID:     tenantID,
			DocumentName: documentName,
			ChunkIndex:   len(chunks),
			Text:         c.codec.Decode(window),
			TokenCount:   len(window),
			CreatedAt:    now,
			Metadata: map[string]any{
				domain.MetaTotalTokens: total,
				domain.MetaChunkMethod: domain.MethodOverlapping,
				domain.MetaStartToken:  start,
				domain.MetaEndToken:    end,
				domain.MetaLanguage:    language,
			},
		})
		start = end - c.overlap
		if start >= total-c.overlap {
			break
		}
	}
	return chunks
}
