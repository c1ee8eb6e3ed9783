package health

import "context"

// IndexPinger checks vector index store availability.
type IndexPinger interface {
	Ping(ctx context.Context) error
}

// CatalogPinger checks document catalog availability.
type CatalogPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
