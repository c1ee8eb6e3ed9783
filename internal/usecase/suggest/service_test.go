package suggest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/casecontext"
	"github.com/claimsight/claimsight/internal/domain/chunk"
	"github.com/claimsight/claimsight/internal/domain/search"
	"github.com/claimsight/claimsight/internal/domain/suggestion"
	"github.com/claimsight/claimsight/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterSuggestMetrics()
	m.Run()
}

// --- Mocks ---

type mockEmbedder struct {
	vec      []float32
	errs     []error // error per call, nil entry = success
	calls    int
	lastText string
	waitCtx  bool // block until the call context expires
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.lastText = text
	if m.waitCtx {
		<-ctx.Done()
		return domain.EmbeddingResult{}, ctx.Err()
	}
	if m.calls <= len(m.errs) && m.errs[m.calls-1] != nil {
		return domain.EmbeddingResult{}, m.errs[m.calls-1]
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 3}, nil
}

type mockIndex struct {
	hits  []search.Hit
	errs  []error
	calls int
	lastK int
}

func (m *mockIndex) Search(_ context.Context, _ []float32, _ search.Filters, k int) ([]search.Hit, error) {
	m.calls++
	m.lastK = k
	if m.calls <= len(m.errs) && m.errs[m.calls-1] != nil {
		return nil, m.errs[m.calls-1]
	}
	return m.hits, nil
}

type mockResolver struct {
	failChunks map[string]bool // chunk IDs whose resolution fails
	calls      int
}

func (m *mockResolver) ResolveCitation(_ context.Context, documentID, chunkID string) (suggestion.Citation, error) {
	m.calls++
	if m.failChunks[chunkID] {
		return suggestion.Citation{}, fmt.Errorf("citation for %s: %w", chunkID, domain.ErrCitationResolution)
	}
	return suggestion.Citation{
		DocumentID:    documentID,
		DocumentTitle: "Policy Manual",
		PageNumber:    1,
	}, nil
}

// --- Helpers ---

func testConfig() Config {
	return Config{
		OverfetchFactor: 3,
		CallTimeout:     time.Second,
		RetryBackoff:    time.Millisecond,
	}
}

func newTestService(embed *mockEmbedder, index *mockIndex, resolver *mockResolver) *Service {
	return New(embed, index, resolver, testConfig(), nil)
}

func makeHit(t *testing.T, documentID, chunkID string, page int, score float64) search.Hit {
	t.Helper()
	c, err := chunk.New(chunkID, documentID, "chunk content", page, 1, 0, "General")
	if err != nil {
		t.Fatalf("chunk.New: %v", err)
	}
	return search.NewHit(c, "Policy Manual", score)
}

func makeQuery(t *testing.T, text string, threshold float64, limit int) search.Query {
	t.Helper()
	q, err := search.New(text, threshold, limit, search.Filters{})
	if err != nil {
		t.Fatalf("search.New: %v", err)
	}
	return q
}

func validContext() *casecontext.Context {
	return &casecontext.Context{
		CaseID:   "case-1",
		CaseType: "auto_claim",
		State:    "CA",
		Tags:     []string{"collision"},
	}
}

// --- Suggest tests ---

func TestSuggest_HappyPath(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	index := &mockIndex{hits: []search.Hit{makeHit(t, "doc-1", "c1", 1, 0.9)}}
	resolver := &mockResolver{}
	svc := newTestService(embed, index, resolver)

	results, err := svc.Suggest(context.Background(), validContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if embed.lastText != "auto_claim CA collision" {
		t.Errorf("unexpected normalized query: %q", embed.lastText)
	}

	r := results[0]
	if r.ID() == "" {
		t.Error("expected generated result id")
	}
	if r.RelevanceScore() != 0.9 {
		t.Errorf("expected score 0.9, got %g", r.RelevanceScore())
	}
	if len(r.Citations()) != 1 || r.Citations()[0].DocumentID != "doc-1" {
		t.Errorf("unexpected citations: %+v", r.Citations())
	}

	match := r.ContextMatch()
	if match.Query != "auto_claim CA collision" {
		t.Errorf("unexpected match query: %q", match.Query)
	}
	wantFields := []string{"case_type", "state", "tags"}
	if len(match.MatchedFields) != len(wantFields) {
		t.Fatalf("expected matched fields %v, got %v", wantFields, match.MatchedFields)
	}
	for i, f := range wantFields {
		if match.MatchedFields[i] != f {
			t.Errorf("matched field [%d]: expected %q, got %q", i, f, match.MatchedFields[i])
		}
	}
	if match.SectionTitle != "General" {
		t.Errorf("expected section title from chunk, got %q", match.SectionTitle)
	}
}

func TestSuggest_InvalidContext_NoIO(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1}}
	index := &mockIndex{}
	svc := newTestService(embed, index, &mockResolver{})

	_, err := svc.Suggest(context.Background(), &casecontext.Context{CaseType: "auto_claim"})
	if !errors.Is(err, domain.ErrInvalidContext) {
		t.Fatalf("expected ErrInvalidContext, got %v", err)
	}
	if embed.calls != 0 {
		t.Error("embedder should not be called for an invalid context")
	}
	if index.calls != 0 {
		t.Error("index should not be queried for an invalid context")
	}
}

// --- Search pipeline tests ---

func TestSearch_ThresholdFiltersResults(t *testing.T) {
	scores := []float64{0.95, 0.9, 0.88, 0.8, 0.75, 0.6, 0.5, 0.3}
	hits := make([]search.Hit, len(scores))
	for i, sc := range scores {
		hits[i] = makeHit(t, fmt.Sprintf("doc-%d", i), fmt.Sprintf("c%d", i), 1, sc)
	}
	index := &mockIndex{hits: hits}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, index, &mockResolver{})

	results, err := svc.Search(context.Background(), makeQuery(t, "coverage limits", 0.7, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected exactly 5 results above threshold 0.7, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].RelevanceScore() > results[i-1].RelevanceScore() {
			t.Errorf("results not sorted descending at [%d]", i)
		}
	}
}

func TestSearch_OverfetchesCandidates(t *testing.T) {
	index := &mockIndex{}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, index, &mockResolver{})

	_, err := svc.Search(context.Background(), makeQuery(t, "deductible", 0, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.lastK != 30 {
		t.Errorf("expected KNN k=30 (limit 10 x overfetch 3), got %d", index.lastK)
	}
}

func TestSearch_DedupeKeepsHighestScorePerPage(t *testing.T) {
	index := &mockIndex{hits: []search.Hit{
		makeHit(t, "doc-1", "c1", 4, 0.92),
		makeHit(t, "doc-2", "c2", 1, 0.9),
		makeHit(t, "doc-1", "c3", 4, 0.85), // same (doc, page) as c1
	}}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, index, &mockResolver{})

	results, err := svc.Search(context.Background(), makeQuery(t, "claim form", 0.5, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results after dedupe, got %d", len(results))
	}
	if results[0].SourceDocument() != "doc-1" || results[0].RelevanceScore() != 0.92 {
		t.Errorf("expected doc-1 page 4 kept with score 0.92, got %s/%g",
			results[0].SourceDocument(), results[0].RelevanceScore())
	}
}

func TestSearch_TruncatesToLimit(t *testing.T) {
	hits := make([]search.Hit, 6)
	for i := range hits {
		hits[i] = makeHit(t, fmt.Sprintf("doc-%d", i), fmt.Sprintf("c%d", i), 1, 0.95-float64(i)*0.01)
	}
	index := &mockIndex{hits: hits}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, index, &mockResolver{})

	results, err := svc.Search(context.Background(), makeQuery(t, "exclusions", 0.5, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}

func TestSearch_EmptyResults_IsSuccess(t *testing.T) {
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, &mockIndex{}, &mockResolver{})

	results, err := svc.Search(context.Background(), makeQuery(t, "no matches here", 0, 0))
	if err != nil {
		t.Fatalf("empty result list must be success, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestSearch_EmptyQuery_NoEmbedderCall(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := newTestService(embed, &mockIndex{}, &mockResolver{})

	_, err := svc.Search(context.Background(), search.Query{})
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if embed.calls != 0 {
		t.Error("embedder should not be called for an empty query")
	}
}

// --- Retry tests ---

func TestSearch_EmbedRecoversOnRetry(t *testing.T) {
	embed := &mockEmbedder{
		vec:  []float32{0.1},
		errs: []error{errors.New("transient provider error")},
	}
	index := &mockIndex{hits: []search.Hit{makeHit(t, "doc-1", "c1", 1, 0.9)}}
	svc := newTestService(embed, index, &mockResolver{})

	results, err := svc.Search(context.Background(), makeQuery(t, "coverage", 0, 0))
	if err != nil {
		t.Fatalf("expected recovery on retry, got %v", err)
	}
	if embed.calls != 2 {
		t.Errorf("expected 2 embed attempts, got %d", embed.calls)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestSearch_EmbedFailsTwice_ErrEmbeddingUnavailable(t *testing.T) {
	embed := &mockEmbedder{
		errs: []error{errors.New("down"), errors.New("still down")},
	}
	index := &mockIndex{}
	svc := newTestService(embed, index, &mockResolver{})

	_, err := svc.Search(context.Background(), makeQuery(t, "coverage", 0, 0))
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if embed.calls != 2 {
		t.Errorf("expected exactly 2 embed attempts, got %d", embed.calls)
	}
	if index.calls != 0 {
		t.Error("index should not be queried when embedding fails")
	}
}

func TestSearch_DoubleTimeout_RecoverableError(t *testing.T) {
	embed := &mockEmbedder{waitCtx: true}
	cfg := testConfig()
	cfg.CallTimeout = 10 * time.Millisecond
	svc := New(embed, &mockIndex{}, &mockResolver{}, cfg, nil)

	_, err := svc.Search(context.Background(), makeQuery(t, "coverage", 0, 0))
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable after double timeout, got %v", err)
	}
	if embed.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", embed.calls)
	}
}

func TestSearch_IndexRecoversOnRetry(t *testing.T) {
	index := &mockIndex{
		hits: []search.Hit{makeHit(t, "doc-1", "c1", 1, 0.9)},
		errs: []error{errors.New("connection reset")},
	}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, index, &mockResolver{})

	results, err := svc.Search(context.Background(), makeQuery(t, "coverage", 0, 0))
	if err != nil {
		t.Fatalf("expected recovery on retry, got %v", err)
	}
	if index.calls != 2 {
		t.Errorf("expected 2 index attempts, got %d", index.calls)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestSearch_IndexFailsTwice_ErrIndexUnavailable(t *testing.T) {
	index := &mockIndex{
		errs: []error{errors.New("down"), errors.New("still down")},
	}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, index, &mockResolver{})

	_, err := svc.Search(context.Background(), makeQuery(t, "coverage", 0, 0))
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
	if index.calls != 2 {
		t.Errorf("expected exactly 2 index attempts, got %d", index.calls)
	}
}

// --- Citation tests ---

func TestSearch_CitationFailureDropsItemOnly(t *testing.T) {
	index := &mockIndex{hits: []search.Hit{
		makeHit(t, "doc-1", "c1", 1, 0.95),
		makeHit(t, "doc-2", "c2", 1, 0.9),
		makeHit(t, "doc-3", "c3", 1, 0.85),
	}}
	resolver := &mockResolver{failChunks: map[string]bool{"c2": true}}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, index, resolver)

	results, err := svc.Search(context.Background(), makeQuery(t, "coverage", 0.5, 0))
	if err != nil {
		t.Fatalf("citation failure must not fail the call, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results after drop, got %d", len(results))
	}
	for _, r := range results {
		if r.SourceDocument() == "doc-2" {
			t.Error("doc-2 should have been dropped")
		}
	}
}

func TestSearch_AllCitationsFail_EmptySuccess(t *testing.T) {
	index := &mockIndex{hits: []search.Hit{makeHit(t, "doc-1", "c1", 1, 0.9)}}
	resolver := &mockResolver{failChunks: map[string]bool{"c1": true}}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, index, resolver)

	results, err := svc.Search(context.Background(), makeQuery(t, "coverage", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}
