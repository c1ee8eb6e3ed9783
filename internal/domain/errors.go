package domain

import "errors"

var (
	// ErrInvalidContext signals a case context missing required fields.
	// Never retried; the engine must not run an index query for such a context.
	ErrInvalidContext = errors.New("invalid case context")
	// ErrEmptyQuery signals a search request with no query text.
	ErrEmptyQuery = errors.New("empty query")
	// ErrEmbeddingUnavailable signals an embedding provider failure or timeout.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrIndexUnavailable signals a vector index failure or timeout.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrInvalidDocument signals a document or chunk failing catalog validation.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrDocumentNotFound signals a missing catalog document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrCitationResolution signals a per-result citation lookup failure.
	// Non-fatal: the affected result is dropped and the call still succeeds.
	ErrCitationResolution = errors.New("citation resolution failed")
	// ErrAlreadyExists signals a duplicate catalog document.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmbeddingQuotaExceeded signals the embedding token budget is
	// exhausted and the budget action is set to reject.
	ErrEmbeddingQuotaExceeded = errors.New("embedding token budget exceeded")
)
