package claimsight

import (
	"context"
	"fmt"
	"time"
)

// RegisterDocument adds a document to the catalog. Chunks are indexed
// separately via IngestChunks.
func (c *Client) RegisterDocument(ctx context.Context, doc Document) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("register_document", start, err) }()

	dd, err := doc.toDomain()
	if err != nil {
		return fmt.Errorf("register document: %w", err)
	}
	if err = c.ingestSvc.RegisterDocument(ctx, dd); err != nil {
		return fmt.Errorf("register document: %w", err)
	}
	return nil
}

// IngestChunks vectorizes and indexes the chunks of a registered
// document. Returns the number of chunks written to the index.
func (c *Client) IngestChunks(ctx context.Context, documentID string, chunks []Chunk) (_ int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest_chunks", start, err) }()

	dc, err := chunksToDomain(documentID, chunks)
	if err != nil {
		return 0, fmt.Errorf("ingest chunks: %w", err)
	}
	n, err := c.ingestSvc.IngestChunks(ctx, documentID, dc)
	if err != nil {
		return 0, fmt.Errorf("ingest chunks: %w", err)
	}
	return n, nil
}

// GetDocument fetches a catalog document by ID.
func (c *Client) GetDocument(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_document", start, err) }()

	doc, err := c.ingestSvc.GetDocument(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return documentFromDomain(doc), nil
}

// ListDocuments returns all catalog documents.
func (c *Client) ListDocuments(ctx context.Context) (_ []Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list_documents", start, err) }()

	docs, err := c.ingestSvc.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentFromDomain(d))
	}
	return out, nil
}

// DeleteDocument removes a document from the catalog and the vector
// index, including its citations.
func (c *Client) DeleteDocument(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_document", start, err) }()

	if err = c.ingestSvc.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
