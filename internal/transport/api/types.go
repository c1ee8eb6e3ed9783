// Package api defines the wire types shared by the HTTP and WebSocket
// transports and their converters to and from domain values.
package api

import (
	"fmt"
	"sort"
	"time"

	"github.com/claimsight/claimsight/internal/domain/casecontext"
	"github.com/claimsight/claimsight/internal/domain/chunk"
	"github.com/claimsight/claimsight/internal/domain/document"
	"github.com/claimsight/claimsight/internal/domain/search"
	"github.com/claimsight/claimsight/internal/domain/suggestion"
)

// ErrorCode identifies an error class on the wire.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeInvalidContext       ErrorCode = "invalid_context"
	CodeEmptyQuery           ErrorCode = "empty_query"
	CodeInvalidDocument      ErrorCode = "invalid_document"
	CodeDocumentNotFound     ErrorCode = "document_not_found"
	CodeAlreadyExists        ErrorCode = "already_exists"
	CodeEmbeddingUnavailable ErrorCode = "embedding_unavailable"
	CodeIndexUnavailable     ErrorCode = "index_unavailable"
	CodeQuotaExceeded        ErrorCode = "quota_exceeded"
	CodeUnauthorized         ErrorCode = "unauthorized"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Text      string            `json:"text"`
	Filters   map[string]string `json:"filters,omitempty"`
	Limit     int               `json:"limit,omitempty"`
	Threshold float64           `json:"threshold,omitempty"`
}

// SuggestionResult is a single ranked suggestion on the wire.
type SuggestionResult struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	Content         string                  `json:"content"`
	RelevanceScore  float64                 `json:"relevance_score"`
	SourceDocument  string                  `json:"source_document"`
	PageNumber      int                     `json:"page_number"`
	ParagraphNumber *int                    `json:"paragraph_number,omitempty"`
	Citations       []suggestion.Citation   `json:"citations"`
	ContextMatch    suggestion.ContextMatch `json:"context_match"`
	Timestamp       time.Time               `json:"timestamp"`
}

// SuggestionListResponse wraps a result list.
type SuggestionListResponse struct {
	Items []SuggestionResult `json:"items"`
	Total int                `json:"total"`
}

// DocumentRequest is the body of POST /api/documents.
type DocumentRequest struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	DocType   string   `json:"doc_type,omitempty"`
	State     string   `json:"state,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	PageCount int      `json:"page_count,omitempty"`
}

// DocumentResponse is a catalog document on the wire.
type DocumentResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	DocType   string    `json:"doc_type,omitempty"`
	State     string    `json:"state,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	PageCount int       `json:"page_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChunkRequest is one chunk in POST /api/documents/{id}/chunks.
type ChunkRequest struct {
	ID              string `json:"id"`
	Content         string `json:"content"`
	PageNumber      int    `json:"page_number"`
	ParagraphNumber int    `json:"paragraph_number,omitempty"`
	ChunkIndex      int    `json:"chunk_index"`
	SectionTitle    string `json:"section_title,omitempty"`
}

// IngestRequest is the body of POST /api/documents/{id}/chunks.
type IngestRequest struct {
	Chunks []ChunkRequest `json:"chunks"`
}

// IngestResponse reports an ingestion outcome.
type IngestResponse struct {
	DocumentID    string `json:"document_id"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// WebSocket message types.
const (
	MessageTypeSuggestions = "suggestions"
	MessageTypeError       = "error"
)

// SuggestionsMessage is the outbound WebSocket payload on success.
type SuggestionsMessage struct {
	Type      string             `json:"type"`
	Data      []SuggestionResult `json:"data"`
	Count     int                `json:"count"`
	Timestamp int64              `json:"timestamp"` // unix milliseconds
}

// ErrorMessage is the outbound WebSocket payload on failure.
type ErrorMessage struct {
	Type      string `json:"type"`
	Error     string `json:"error"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// ContextSubmission is the inbound WebSocket payload. Case fields sit at
// the top level of the message, next to client_id and timestamp.
type ContextSubmission struct {
	casecontext.Context
	ClientID  string `json:"client_id,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// ResultToAPI converts a domain suggestion to the wire shape.
func ResultToAPI(r *suggestion.Result) SuggestionResult {
	out := SuggestionResult{
		ID:             r.ID(),
		Title:          r.Title(),
		Content:        r.Content(),
		RelevanceScore: r.RelevanceScore(),
		SourceDocument: r.SourceDocument(),
		PageNumber:     r.PageNumber(),
		Citations:      r.Citations(),
		ContextMatch:   r.ContextMatch(),
		Timestamp:      r.Timestamp(),
	}
	if p := r.ParagraphNumber(); p > 0 {
		out.ParagraphNumber = &p
	}
	if out.Citations == nil {
		out.Citations = []suggestion.Citation{}
	}
	return out
}

// ResultsToAPI converts a result list to the wire shape.
func ResultsToAPI(results []suggestion.Result) []SuggestionResult {
	items := make([]SuggestionResult, len(results))
	for i := range results {
		items[i] = ResultToAPI(&results[i])
	}
	return items
}

// QueryFromAPI builds a validated domain query from a search request.
// Filter keys are applied in sorted order so the same request always yields
// the same index query.
func QueryFromAPI(req SearchRequest) (search.Query, error) {
	keys := make([]string, 0, len(req.Filters))
	for k := range req.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]search.Condition, 0, len(keys))
	for _, k := range keys {
		cond, err := search.NewCondition(k, req.Filters[k])
		if err != nil {
			return search.Query{}, fmt.Errorf("filter %q: %w", k, err)
		}
		conditions = append(conditions, cond)
	}

	filters, err := search.NewFilters(conditions)
	if err != nil {
		return search.Query{}, err
	}

	return search.New(req.Text, req.Threshold, req.Limit, filters)
}

// DocumentFromAPI builds a validated domain document.
func DocumentFromAPI(req DocumentRequest) (document.Document, error) {
	return document.New(req.ID, req.Title, req.DocType, req.State, req.Tags, req.PageCount)
}

// DocumentToAPI converts a catalog document to the wire shape.
func DocumentToAPI(d document.Document) DocumentResponse {
	return DocumentResponse{
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

// ChunksFromAPI builds validated domain chunks for a document.
func ChunksFromAPI(documentID string, reqs []ChunkRequest) ([]chunk.Chunk, error) {
	chunks := make([]chunk.Chunk, 0, len(reqs))
	for i, c := range reqs {
		built, err := chunk.New(
			c.ID, documentID, c.Content,
			c.PageNumber, c.ParagraphNumber, c.ChunkIndex,
			c.SectionTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("chunk [%d]: %w", i, err)
		}
		chunks = append(chunks, built)
	}
	return chunks, nil
}
