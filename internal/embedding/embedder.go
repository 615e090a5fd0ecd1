package embedding

import "context"

// Embedder converts text into fixed-dimension vectors. Implementations are
// opaque to the retrieval core: it only relies on Dimension being stable and
// every returned vector having exactly that many components.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
