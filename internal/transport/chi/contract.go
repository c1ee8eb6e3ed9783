package chi

import (
	"context"

	"github.com/claimsight/claimsight/internal/domain/casecontext"
	"github.com/claimsight/claimsight/internal/domain/chunk"
	"github.com/claimsight/claimsight/internal/domain/document"
	"github.com/claimsight/claimsight/internal/domain/search"
	"github.com/claimsight/claimsight/internal/domain/suggestion"
	healthuc "github.com/claimsight/claimsight/internal/usecase/health"
	usageuc "github.com/claimsight/claimsight/internal/usecase/usage"
)

// Suggester runs the suggestion pipeline.
type Suggester interface {
	Suggest(ctx context.Context, cc *casecontext.Context) ([]suggestion.Result, error)
	Search(ctx context.Context, q search.Query) ([]suggestion.Result, error)
}

// Ingester manages the document catalog and chunk ingestion.
type Ingester interface {
	RegisterDocument(ctx context.Context, doc document.Document) error
	GetDocument(ctx context.Context, id string) (document.Document, error)
	ListDocuments(ctx context.Context) ([]document.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	IngestChunks(ctx context.Context, documentID string, chunks []chunk.Chunk) (int, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// UsageReporter reports embedding token consumption.
type UsageReporter interface {
	GetReport(ctx context.Context, period usageuc.Period) usageuc.Report
}
