package ingest

import (
	"context"

	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/chunk"
	"github.com/claimsight/claimsight/internal/domain/document"
)

// Catalog is the document metadata and citation store.
type Catalog interface {
	SaveDocument(ctx context.Context, doc document.Document) error
	GetDocument(ctx context.Context, id string) (document.Document, error)
	ListDocuments(ctx context.Context) ([]document.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	SaveCitations(ctx context.Context, documentID string, chunks []chunk.Chunk) error
}

// Index is the vector index for chunk records.
type Index interface {
	UpsertChunks(ctx context.Context, doc document.Document, chunks []chunk.Chunk, vectors [][]float32) error
	RemoveDocument(ctx context.Context, documentID string) error
}

// BatchEmbedder vectorizes chunk contents in one provider call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
