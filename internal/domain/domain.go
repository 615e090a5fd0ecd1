package domain

import "time"

// Chunk is a token-bounded slice of a document, immutable once created.
// ChunkIndex values for a (TenantID, DocumentName) pair form a dense,
// strictly increasing sequence starting at 0.
type Chunk struct {
	TenantID     string         `json:"tenant_id"`
	DocumentName string         `json:"document_name"`
	ChunkIndex   int            `json:"chunk_index"`
	Text         string         `json:"text"`
	TokenCount   int            `json:"token_count"`
	CreatedAt    time.Time      `json:"created_at"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Well-known metadata keys attached by the chunker and ingestion pipeline.
const (
	MetaTotalTokens = "total_tokens"
	MetaChunkMethod = "chunk_method"
	MetaLanguage    = "language"
	MetaStartToken  = "start_token"
	MetaEndToken    = "end_token"
)

// Chunking methods recorded under MetaChunkMethod.
const (
	MethodSingleChunk = "single_chunk"
	MethodOverlapping = "overlapping"
)

// VectorRecord is one (id, vector, payload) triple stored in an index.
// The payload carries enough of the chunk to build a Result without a
// secondary lookup.
type VectorRecord struct {
	ID      string
	Vector  []float32
	Payload Chunk
}

// Query describes one similarity search. Language is an optional ISO 639-1
// filter; empty means no language filtering.
type Query struct {
	Vector    []float32
	TenantID  string
	TopK      int
	Threshold float32
	Language  string
}

// Result is a single search hit, ordered by descending score by the index.
type Result struct {
	Text         string         `json:"text"`
	DocumentName string         `json:"document_name"`
	ChunkIndex   int            `json:"chunk_index"`
	Score        float32        `json:"similarity_score"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Stats summarizes the state of a vector index backend.
type Stats struct {
	TotalVectors int    `json:"total_vectors"`
	Dimension    int    `json:"dimension"`
	Backend      string `json:"backend"`
}
