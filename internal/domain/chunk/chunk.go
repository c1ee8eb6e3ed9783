// Package chunk defines the unit of indexed document text: a page- or
// paragraph-sized extract stored in the vector index with its provenance.
package chunk

import "fmt"

// Chunk is a single extracted piece of a document.
type Chunk struct {
	id              string
	documentID      string
	content         string
	pageNumber      int
	paragraphNumber int // 0 = unknown
	sectionTitle    string
	chunkIndex      int
}

// New validates and creates a chunk. Page numbers are 1-based; a zero
// paragraph number means the extractor could not determine one.
func New(
	id, documentID, content string,
	pageNumber, paragraphNumber, chunkIndex int,
	sectionTitle string,
) (Chunk, error) {
	if id == "" {
		return Chunk{}, fmt.Errorf("chunk id is required")
	}
	if documentID == "" {
		return Chunk{}, fmt.Errorf("document id is required")
	}
	if content == "" {
		return Chunk{}, fmt.Errorf("chunk content is required")
	}
	if pageNumber < 1 {
		return Chunk{}, fmt.Errorf("page number must be >= 1, got %d", pageNumber)
	}
	if paragraphNumber < 0 {
		return Chunk{}, fmt.Errorf("paragraph number must be >= 0, got %d", paragraphNumber)
	}
	if chunkIndex < 0 {
		return Chunk{}, fmt.Errorf("chunk index must be >= 0, got %d", chunkIndex)
	}
	return Chunk{
		id:              id,
		documentID:      documentID,
		content:         content,
		pageNumber:      pageNumber,
		paragraphNumber: paragraphNumber,
		sectionTitle:    sectionTitle,
		chunkIndex:      chunkIndex,
	}, nil
}

// Reconstruct rebuilds a chunk from stored fields without validation.
// Used by repositories when parsing index records.
func Reconstruct(
	id, documentID, content string,
	pageNumber, paragraphNumber, chunkIndex int,
	sectionTitle string,
) Chunk {
	return Chunk{
		id:              id,
		documentID:      documentID,
		content:         content,
		pageNumber:      pageNumber,
		paragraphNumber: paragraphNumber,
		sectionTitle:    sectionTitle,
		chunkIndex:      chunkIndex,
	}
}

// ID returns the chunk identifier.
func (c *Chunk) ID() string { return c.id }

// DocumentID returns the parent document identifier.
func (c *Chunk) DocumentID() string { return c.documentID }

// Content returns the chunk text.
func (c *Chunk) Content() string { return c.content }

// PageNumber returns the 1-based page number.
func (c *Chunk) PageNumber() int { return c.pageNumber }

// ParagraphNumber returns the 1-based paragraph number, 0 when unknown.
func (c *Chunk) ParagraphNumber() int { return c.paragraphNumber }

// SectionTitle returns the section heading the chunk falls under, if any.
func (c *Chunk) SectionTitle() string { return c.sectionTitle }

// ChunkIndex returns the chunk's sequence position within its document.
func (c *Chunk) ChunkIndex() int { return c.chunkIndex }
