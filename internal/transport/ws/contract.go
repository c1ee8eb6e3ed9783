package ws

import (
	"context"

	"github.com/claimsight/claimsight/internal/domain/casecontext"
	"github.com/claimsight/claimsight/internal/domain/suggestion"
)

// Suggester runs a suggestion cycle for a case context.
type Suggester interface {
	Suggest(ctx context.Context, cc *casecontext.Context) ([]suggestion.Result, error)
}
