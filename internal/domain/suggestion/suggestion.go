// Package suggestion defines the engine's output values: ranked results with
// citation provenance. Results are immutable once constructed and are never
// shared between suggestion cycles.
package suggestion

import (
	"fmt"
	"time"
)

// Citation is the provenance record attached to a result, required for
// compliance traceability. Always derived from the source chunk.
type Citation struct {
	DocumentID      string     `json:"document_id"`
	DocumentTitle   string     `json:"document_title"`
	PageNumber      int        `json:"page_number"`
	ParagraphNumber *int       `json:"paragraph_number,omitempty"`
	SectionTitle    string     `json:"section_title,omitempty"`
	URL             string     `json:"url,omitempty"`
	LastUpdated     *time.Time `json:"last_updated,omitempty"`
}

// ContextMatch annotates which case-context fields contributed to a match.
// Best-effort metadata; never used for ranking.
type ContextMatch struct {
	Query         string   `json:"query"`
	MatchedFields []string `json:"matched_fields,omitempty"`
	SectionTitle  string   `json:"section_title,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// Result is a single ranked suggestion with citation provenance.
type Result struct {
	id              string
	title           string
	content         string
	relevanceScore  float64
	sourceDocument  string
	pageNumber      int
	paragraphNumber int // 0 = unknown
	citations       []Citation
	contextMatch    ContextMatch
	timestamp       time.Time
}

// New validates and creates a result.
func New(
	id, title, content string,
	relevanceScore float64,
	sourceDocument string,
	pageNumber, paragraphNumber int,
	citations []Citation,
	contextMatch ContextMatch,
	timestamp time.Time,
) (Result, error) {
	if id == "" {
		return Result{}, fmt.Errorf("result id is required")
	}
	if relevanceScore < 0 || relevanceScore > 1 {
		return Result{}, fmt.Errorf("relevance score must be in [0,1], got %g", relevanceScore)
	}
	if pageNumber < 1 {
		return Result{}, fmt.Errorf("page number must be >= 1, got %d", pageNumber)
	}
	if paragraphNumber < 0 {
		return Result{}, fmt.Errorf("paragraph number must be >= 0, got %d", paragraphNumber)
	}
	return Result{
		id:              id,
		title:           title,
		content:         content,
		relevanceScore:  relevanceScore,
		sourceDocument:  sourceDocument,
		pageNumber:      pageNumber,
		paragraphNumber: paragraphNumber,
		citations:       citations,
		contextMatch:    contextMatch,
		timestamp:       timestamp,
	}, nil
}

// ID returns the unique suggestion identifier.
func (r *Result) ID() string { return r.id }

// Title returns the source document title.
func (r *Result) Title() string { return r.title }

// Content returns the matched content snippet.
func (r *Result) Content() string { return r.content }

// RelevanceScore returns the similarity score in [0,1].
func (r *Result) RelevanceScore() float64 { return r.relevanceScore }

// SourceDocument returns the source document path.
func (r *Result) SourceDocument() string { return r.sourceDocument }

// PageNumber returns the 1-based page number.
func (r *Result) PageNumber() int { return r.pageNumber }

// ParagraphNumber returns the 1-based paragraph number, 0 when unknown.
func (r *Result) ParagraphNumber() int { return r.paragraphNumber }

// Citations returns the citation references.
func (r *Result) Citations() []Citation { return r.citations }

// ContextMatch returns the context-match annotation.
func (r *Result) ContextMatch() ContextMatch { return r.contextMatch }

// Timestamp returns the result creation time.
func (r *Result) Timestamp() time.Time { return r.timestamp }
