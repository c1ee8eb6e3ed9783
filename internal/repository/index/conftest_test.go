package index

import (
	"context"
	"testing"

	"github.com/claimsight/claimsight/internal/db"
	"github.com/claimsight/claimsight/internal/domain/chunk"
	"github.com/claimsight/claimsight/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	delFn         func(ctx context.Context, key string) error
	scanFn        func(ctx context.Context, pattern string) ([]string, error)
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, 4), ms
}

func testDocument(t *testing.T) document.Document {
	t.Helper()
	doc, err := document.New("doc-1", "Florida Auto Policy Handbook", "policy", "FL", []string{"auto"}, 10)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return doc
}

func testChunk(t *testing.T, id string, page int) chunk.Chunk {
	t.Helper()
	c, err := chunk.New(id, "doc-1", "filing deadline is 30 days", page, 2, 0, "Deadlines")
	if err != nil {
		t.Fatalf("chunk.New: %v", err)
	}
	return c
}

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3, 0.4}
}
