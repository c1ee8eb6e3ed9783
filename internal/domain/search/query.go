// Package search defines the validated, ephemeral query value consumed by
// the suggestion engine. Queries are built fresh per cycle and never stored.
package search

import (
	"fmt"
	"strings"

	"github.com/claimsight/claimsight/internal/domain"
)

// Search parameter limits.
const (
	MaxQueryLength   = 4096
	DefaultLimit     = 10
	MaxLimit         = 50
	DefaultThreshold = 0.7
)

// Query is a validated search request.
type Query struct {
	text      string
	threshold float64
	limit     int
	filters   Filters
}

// New validates and normalizes search parameters.
// Defaults: limit=10, threshold=0.7. A threshold of exactly 0 is treated as
// unset so that JSON clients may omit the field.
func New(text string, threshold float64, limit int, filters Filters) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, domain.ErrEmptyQuery
	}
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if threshold < 0 || threshold > 1 {
		return Query{}, fmt.Errorf("threshold must be between 0 and 1, got %g", threshold)
	}
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if limit < 0 {
		return Query{}, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Query{
		text:      text,
		threshold: threshold,
		limit:     limit,
		filters:   filters,
	}, nil
}

// Text returns the query text.
func (q *Query) Text() string { return q.text }

// Threshold returns the minimum similarity score for a result.
func (q *Query) Threshold() float64 { return q.threshold }

// Limit returns the maximum number of results.
func (q *Query) Limit() int { return q.limit }

// Filters returns the metadata pre-filter conditions.
func (q *Query) Filters() Filters { return q.filters }
