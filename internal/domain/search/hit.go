package search

import "github.com/claimsight/claimsight/internal/domain/chunk"

// Hit is a single raw match from the vector index: the stored chunk, the
// denormalized document title and the similarity score in [0,1].
type Hit struct {
	chunk         chunk.Chunk
	documentTitle string
	score         float64
}

// NewHit creates an index hit.
func NewHit(c chunk.Chunk, documentTitle string, score float64) Hit {
	return Hit{chunk: c, documentTitle: documentTitle, score: score}
}

// Chunk returns the matched chunk.
func (h Hit) Chunk() chunk.Chunk { return h.chunk }

// DocumentTitle returns the title stored alongside the chunk.
func (h Hit) DocumentTitle() string { return h.documentTitle }

// Score returns the similarity score.
func (h Hit) Score() float64 { return h.score }
