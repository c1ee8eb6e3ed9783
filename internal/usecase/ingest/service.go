// Package ingest handles document registration and chunk ingestion: catalog
// record, batch vectorization, index write and citation records.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/chunk"
	"github.com/claimsight/claimsight/internal/domain/document"
)

// Service orchestrates the ingestion flow.
type Service struct {
	catalog Catalog
	index   Index
	embed   BatchEmbedder
	logger  *zap.Logger
}

// New creates an ingest service.
func New(catalog Catalog, index Index, embed BatchEmbedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: catalog, index: index, embed: embed, logger: logger}
}

// RegisterDocument records document metadata in the catalog.
// A duplicate id surfaces ErrAlreadyExists.
func (s *Service) RegisterDocument(ctx context.Context, doc document.Document) error {
	if err := s.catalog.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("register document %s: %w", doc.ID(), err)
	}

	s.logger.Info("document registered",
		zap.String("document_id", doc.ID()),
		zap.String("title", doc.Title()),
	)
	return nil
}

// IngestChunks vectorizes and indexes chunks of a registered document, then
// writes their citation records. Returns the number of chunks indexed.
func (s *Service) IngestChunks(ctx context.Context, documentID string, chunks []chunk.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %s has no chunks: %w", documentID, domain.ErrInvalidDocument)
	}
	for i := range chunks {
		if chunks[i].DocumentID() != documentID {
			return 0, fmt.Errorf(
				"chunk %s belongs to document %s, not %s: %w",
				chunks[i].ID(), chunks[i].DocumentID(), documentID, domain.ErrInvalidDocument,
			)
		}
	}

	doc, err := s.catalog.GetDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("get document %s: %w", documentID, err)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content()
	}

	batch, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("vectorize %d chunks: %w", len(chunks), err)
	}

	if err := s.index.UpsertChunks(ctx, doc, chunks, batch.Embeddings); err != nil {
		return 0, fmt.Errorf("index chunks: %w", err)
	}

	if err := s.catalog.SaveCitations(ctx, documentID, chunks); err != nil {
		return 0, fmt.Errorf("save citations: %w", err)
	}

	s.logger.Info("chunks ingested",
		zap.String("document_id", documentID),
		zap.Int("chunks", len(chunks)),
		zap.Int("tokens", batch.TotalTokens),
	)
	return len(chunks), nil
}

// GetDocument returns catalog metadata for a document.
func (s *Service) GetDocument(ctx context.Context, id string) (document.Document, error) {
	doc, err := s.catalog.GetDocument(ctx, id)
	if err != nil {
		return document.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

// ListDocuments returns all registered documents, newest first.
func (s *Service) ListDocuments(ctx context.Context) ([]document.Document, error) {
	docs, err := s.catalog.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument purges a document: its index records first, then the
// catalog row (citations go with it via the foreign key).
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	if err := s.index.RemoveDocument(ctx, id); err != nil {
		return fmt.Errorf("remove document %s from index: %w", id, err)
	}

	if err := s.catalog.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}

	s.logger.Info("document deleted", zap.String("document_id", id))
	return nil
}
