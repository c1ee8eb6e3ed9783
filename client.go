package claimsight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/db"
	dbredis "github.com/claimsight/claimsight/internal/db/redis"
	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/casecontext"
	"github.com/claimsight/claimsight/internal/domain/chunk"
	"github.com/claimsight/claimsight/internal/domain/document"
	"github.com/claimsight/claimsight/internal/domain/search"
	"github.com/claimsight/claimsight/internal/domain/suggestion"
	"github.com/claimsight/claimsight/internal/repository/catalog"
	"github.com/claimsight/claimsight/internal/repository/embcache"
	indexrepo "github.com/claimsight/claimsight/internal/repository/index"
	openaiemb "github.com/claimsight/claimsight/internal/transport/openai"
	healthuc "github.com/claimsight/claimsight/internal/usecase/health"
	ingestuc "github.com/claimsight/claimsight/internal/usecase/ingest"
	suggestuc "github.com/claimsight/claimsight/internal/usecase/suggest"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultDimensions       = 1536
	defaultKeyPrefix        = "claimsight:"
)

// Internal interfaces for test substitution.
type suggestUseCase interface {
	Suggest(ctx context.Context, cc *casecontext.Context) ([]suggestion.Result, error)
	Search(ctx context.Context, q search.Query) ([]suggestion.Result, error)
}

type ingestUseCase interface {
	RegisterDocument(ctx context.Context, doc document.Document) error
	IngestChunks(ctx context.Context, documentID string, chunks []chunk.Chunk) (int, error)
	GetDocument(ctx context.Context, id string) (document.Document, error)
	ListDocuments(ctx context.Context) ([]document.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the claimsight embedded client: the full suggestion engine
// wired in-process, without the HTTP layer.
type Client struct {
	store      db.Store
	pool       *pgxpool.Pool
	suggestSvc suggestUseCase
	ingestSvc  ingestUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to the backing stores. The provided
// context is used for readiness checks and schema bootstrap.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dimensions: defaultDimensions,
		keyPrefix:  defaultKeyPrefix,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.redisAddrs) == 0 {
		return nil, errors.New("claimsight: vector index address required (use WithRedis)")
	}
	if cfg.postgresDSN == "" {
		return nil, errors.New("claimsight: document catalog DSN required (use WithPostgres)")
	}

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	domain.SetKeyPrefix(cfg.keyPrefix)

	store, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.redisAddrs,
		Username: cfg.redisUsername,
		Password: cfg.redisPassword,
		DB:       cfg.redisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("claimsight: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("claimsight: vector index not ready: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.postgresDSN)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("claimsight: create postgres pool: %w", err)
	}

	c, err := wireClient(ctx, store, pool, emb, cfg)
	if err != nil {
		pool.Close()
		store.Close()
		return nil, err
	}
	return c, nil
}

// fullEmbedder is the complete vectorization contract the services consume.
type fullEmbedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

// buildEmbedder resolves the configured embedding provider. A custom
// Embedder wins over the built-in OpenAI one.
func buildEmbedder(cfg *clientConfig) (fullEmbedder, error) {
	if cfg.embedder != nil {
		return &embedderAdapter{inner: cfg.embedder}, nil
	}
	if cfg.openAIKey != "" {
		model := cfg.modelName
		if model == "" {
			model = "text-embedding-3-small"
		}
		return openaiemb.NewEmbedder(&openaiemb.Config{
			APIKey:     cfg.openAIKey,
			Model:      model,
			Dimensions: cfg.dimensions,
			Provider:   "openai",
			Logger:     cfg.logger,
		}), nil
	}
	return nil, errors.New("claimsight: embedding provider required (use WithEmbedder or WithOpenAI)")
}

func wireClient(ctx context.Context, store db.Store, pool *pgxpool.Pool, emb fullEmbedder, cfg *clientConfig) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	catalogRepo := catalog.New(pool)
	if err := catalogRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("claimsight: ensure catalog schema: %w", err)
	}

	indexRepo := indexrepo.New(store, cfg.dimensions)
	if err := indexRepo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("claimsight: ensure vector index: %w", err)
	}

	if cfg.cacheTTL > 0 {
		emb = embcache.New(emb, store, cfg.cacheTTL, nil, logger)
	}

	suggestSvc := suggestuc.New(emb, indexRepo, catalogRepo, suggestuc.Config{
		OverfetchFactor: cfg.suggestOverfetch,
		CallTimeout:     cfg.suggestTimeout,
		RetryBackoff:    cfg.suggestBackoff,
	}, logger)
	ingestSvc := ingestuc.New(catalogRepo, indexRepo, emb, logger)

	var checker healthuc.EmbeddingChecker
	if hc, ok := emb.(domain.HealthChecker); ok {
		checker = hc
	}
	healthSvc := healthuc.New(store, catalogRepo, checker)

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		pool:       pool,
		suggestSvc: suggestSvc,
		ingestSvc:  ingestSvc,
		healthSvc:  healthSvc,
		obs:        obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks vector index connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
