package claimsight

import "github.com/claimsight/claimsight/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidContext       = domain.ErrInvalidContext
	ErrEmptyQuery           = domain.ErrEmptyQuery
	ErrEmbeddingUnavailable = domain.ErrEmbeddingUnavailable
	ErrIndexUnavailable     = domain.ErrIndexUnavailable
	ErrInvalidDocument      = domain.ErrInvalidDocument
	ErrDocumentNotFound     = domain.ErrDocumentNotFound
	ErrAlreadyExists        = domain.ErrAlreadyExists
)
