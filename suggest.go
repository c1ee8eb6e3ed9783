package claimsight

import (
	"context"
	"fmt"
	"time"
)

// Suggest returns ranked document suggestions for a case context.
// The context must carry CaseID and CaseType; anything else is optional.
// An empty result is a valid outcome, not an error.
func (c *Client) Suggest(ctx context.Context, cc CaseContext) (_ []Suggestion, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggest", start, err) }()

	results, err := c.suggestSvc.Suggest(ctx, cc.toDomain())
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return suggestionsFromDomain(results), nil
}

// Search runs a free-text suggestion query through the same pipeline.
func (c *Client) Search(ctx context.Context, q SearchQuery) (_ []Suggestion, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	dq, err := q.toDomain()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	results, err := c.suggestSvc.Search(ctx, dq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return suggestionsFromDomain(results), nil
}
