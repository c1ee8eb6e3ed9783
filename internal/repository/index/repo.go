// Package index adapts the Redis FT.SEARCH store to the chunk index the
// suggestion engine queries.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/claimsight/claimsight/internal/db"
	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/chunk"
	"github.com/claimsight/claimsight/internal/domain/document"
	"github.com/claimsight/claimsight/internal/domain/search"
)

// store is the consumer interface for index operations (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements the chunk index over a Redis FT store.
type Repo struct {
	store store
	dims  int
}

// New creates an index repository. dims is the embedding dimensionality the
// FT index is created with.
func New(s store, dims int) *Repo {
	return &Repo{store: s, dims: dims}
}

// EnsureIndex creates the chunk index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	name := indexName()

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def := db.NewIndex(name).
		Prefix(chunkKeyPrefix()).
		Tag("document_id").
		Tag("doc_type").
		Tag("state").
		TagWithOpts("tags", ",", false).
		Numeric("page_number").
		VectorHNSW("vector", r.dims, db.DistanceCosine, 16, 200).
		MustBuild()

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// UpsertChunks writes chunk hash records with their vectors in one pipeline.
// Document metadata is denormalized into every record so that search hits
// carry the title and filterable tags without a catalog round-trip.
func (r *Repo) UpsertChunks(ctx context.Context, doc document.Document, chunks []chunk.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(chunks))
	for i := range chunks {
		items[i] = db.HashSetItem{
			Key:    chunkKey(doc.ID(), chunks[i].ID()),
			Fields: buildHashFields(doc, &chunks[i], vectors[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d chunks for document %s: %w", len(chunks), doc.ID(), err)
	}
	return nil
}

// Search runs a KNN query and returns parsed hits in index order.
func (r *Repo) Search(ctx context.Context, vector []float32, filters search.Filters, k int) ([]search.Hit, error) {
	q := &db.KNNQuery{
		IndexName:    indexName(),
		Filters:      filters,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	hits := make([]search.Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		hits = append(hits, parseHit(entry))
	}
	return hits, nil
}

// RemoveDocument deletes every chunk record of a document.
func (r *Repo) RemoveDocument(ctx context.Context, documentID string) error {
	keys, err := r.store.Scan(ctx, chunkKeyPrefix()+documentID+":*")
	if err != nil {
		return fmt.Errorf("scan chunks for document %s: %w", documentID, err)
	}

	for _, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("delete chunk %s: %w", key, err)
		}
	}
	return nil
}

var returnFields = []string{
	"content", "document_id", "document_title",
	"page_number", "paragraph_number", "chunk_index", "section_title",
	"__vector_score",
}

func indexName() string {
	return domain.KeyPrefix + "chunks:idx"
}

func chunkKeyPrefix() string {
	return domain.KeyPrefix + "chunk:"
}

func chunkKey(documentID, chunkID string) string {
	return chunkKeyPrefix() + documentID + ":" + chunkID
}
