package suggest

import (
	"context"

	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/search"
	"github.com/claimsight/claimsight/internal/domain/suggestion"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index runs KNN queries against the chunk index.
type Index interface {
	Search(ctx context.Context, vector []float32, filters search.Filters, k int) ([]search.Hit, error)
}

// CitationResolver looks up citation provenance for a matched chunk.
type CitationResolver interface {
	ResolveCitation(ctx context.Context, documentID, chunkID string) (suggestion.Citation, error)
}
