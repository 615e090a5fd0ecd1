package domain

import "errors"

var (
	// ErrInvalidChunkConfig is returned at construction time for a chunk
	// size/overlap combination that cannot terminate.
	ErrInvalidChunkConfig = errors.New("chunk overlap must be non-negative and smaller than chunk size")

	// ErrDimensionConflict is returned when an index is initialized with a
	// dimension different from its existing state.
	ErrDimensionConflict = errors.New("index dimension conflicts with existing state")

	// ErrDimensionMismatch is returned when a batch contains a vector whose
	// length differs from the index dimension. The batch is rejected whole.
	ErrDimensionMismatch = errors.New("vector dimension does not match index dimension")

	// ErrIndexCorrupt indicates the persisted index artifacts disagree with
	// each other. Fatal at load time, never silently truncated.
	ErrIndexCorrupt = errors.New("persisted index artifacts are inconsistent")

	// ErrEmbeddingUnavailable wraps embedding-provider failures surfaced by
	// the retrieval engine. Retry policy belongs to the caller.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrIndexUnavailable wraps vector-index failures surfaced by the
	// retrieval engine. Retry policy belongs to the caller.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrEmptyDocument is returned when an ingested document yields no text.
	ErrEmptyDocument = errors.New("document contains no extractable text")
)
