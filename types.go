package claimsight

import (
	"fmt"
	"sort"
	"time"

	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/casecontext"
	"github.com/claimsight/claimsight/internal/domain/chunk"
	"github.com/claimsight/claimsight/internal/domain/document"
	"github.com/claimsight/claimsight/internal/domain/search"
	"github.com/claimsight/claimsight/internal/domain/suggestion"
)

// CaseContext describes the case a support agent is working on.
// CaseID and CaseType are required.
type CaseContext struct {
	CaseID       string
	CaseType     string
	State        string
	Status       string
	Priority     string
	CustomerType string
	PolicyType   string
	ClaimAmount  *float64
	Tags         []string
}

func (c CaseContext) toDomain() *casecontext.Context {
	return &casecontext.Context{
		CaseID:       c.CaseID,
		CaseType:     c.CaseType,
		State:        c.State,
		Status:       c.Status,
		Priority:     c.Priority,
		CustomerType: c.CustomerType,
		PolicyType:   c.PolicyType,
		ClaimAmount:  c.ClaimAmount,
		Tags:         c.Tags,
	}
}

// SearchQuery is a free-text suggestion query. Zero Limit and Threshold
// take the service defaults (10 results, 0.7 minimum score).
type SearchQuery struct {
	Text      string
	Filters   map[string]string
	Limit     int
	Threshold float64
}

func (q SearchQuery) toDomain() (search.Query, error) {
	conds := make([]search.Condition, 0, len(q.Filters))
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c, err := search.NewCondition(k, q.Filters[k])
		if err != nil {
			return search.Query{}, fmt.Errorf("filter %q: %w", k, err)
		}
		conds = append(conds, c)
	}
	filters, err := search.NewFilters(conds)
	if err != nil {
		return search.Query{}, err
	}
	return search.New(q.Text, q.Threshold, q.Limit, filters)
}

// Citation points at the exact place in a source document that backs
// a suggestion.
type Citation struct {
	DocumentID      string
	DocumentTitle   string
	PageNumber      int
	ParagraphNumber *int
	SectionTitle    string
	URL             string
	LastUpdated     *time.Time
}

// ContextMatch explains which case fields contributed to a match.
type ContextMatch struct {
	Query         string
	MatchedFields []string
	SectionTitle  string
	Tags          []string
}

// Suggestion is a single ranked result with citation provenance.
type Suggestion struct {
	ID              string
	Title           string
	Content         string
	RelevanceScore  float64
	SourceDocument  string
	PageNumber      int
	ParagraphNumber *int
	Citations       []Citation
	ContextMatch    ContextMatch
	Timestamp       time.Time
}

func suggestionFromDomain(r *suggestion.Result) Suggestion {
	out := Suggestion{
		ID:             r.ID(),
		Title:          r.Title(),
		Content:        r.Content(),
		RelevanceScore: r.RelevanceScore(),
		SourceDocument: r.SourceDocument(),
		PageNumber:     r.PageNumber(),
		Citations:      make([]Citation, 0, len(r.Citations())),
		Timestamp:      r.Timestamp(),
	}
	if p := r.ParagraphNumber(); p > 0 {
		out.ParagraphNumber = &p
	}
	for _, c := range r.Citations() {
		out.Citations = append(out.Citations, Citation{
			DocumentID:      c.DocumentID,
			DocumentTitle:   c.DocumentTitle,
			PageNumber:      c.PageNumber,
			ParagraphNumber: c.ParagraphNumber,
			SectionTitle:    c.SectionTitle,
			URL:             c.URL,
			LastUpdated:     c.LastUpdated,
		})
	}
	m := r.ContextMatch()
	out.ContextMatch = ContextMatch{
		Query:         m.Query,
		MatchedFields: m.MatchedFields,
		SectionTitle:  m.SectionTitle,
		Tags:          m.Tags,
	}
	return out
}

func suggestionsFromDomain(results []suggestion.Result) []Suggestion {
	out := make([]Suggestion, 0, len(results))
	for i := range results {
		out = append(out, suggestionFromDomain(&results[i]))
	}
	return out
}

// Document is a catalog entry for an indexed source document.
type Document struct {
	ID        string
	Title     string
	DocType   string
	State     string
	Tags      []string
	PageCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d Document) toDomain() (document.Document, error) {
	return document.New(d.ID, d.Title, d.DocType, d.State, d.Tags, d.PageCount)
}

func documentFromDomain(d document.Document) Document {
	return Document{
		ID:        d.ID(),
		Title:     d.Title(),
		DocType:   d.DocType(),
		State:     d.State(),
		Tags:      d.Tags(),
		PageCount: d.PageCount(),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
	}
}

// Chunk is one extracted piece of a document queued for indexing.
// PageNumber is 1-based; a zero ParagraphNumber means unknown.
type Chunk struct {
	ID              string
	Content         string
	PageNumber      int
	ParagraphNumber int
	SectionTitle    string
	ChunkIndex      int
}

func chunksToDomain(documentID string, in []Chunk) ([]chunk.Chunk, error) {
	out := make([]chunk.Chunk, 0, len(in))
	for i, c := range in {
		dc, err := chunk.New(
			c.ID, documentID, c.Content,
			c.PageNumber, c.ParagraphNumber, c.ChunkIndex,
			c.SectionTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("chunk [%d]: %w: %w", i, domain.ErrInvalidDocument, err)
		}
		out = append(out, dc)
	}
	return out, nil
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}
