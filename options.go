package claimsight

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	redisAddrs    []string
	redisUsername string
	redisPassword string
	redisDB       int
	keyPrefix     string

	postgresDSN string

	embedder   Embedder
	openAIKey  string
	modelName  string
	dimensions int

	cacheTTL time.Duration

	suggestOverfetch int
	suggestTimeout   time.Duration
	suggestBackoff   time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the vector index connection.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithRedisCluster configures a multi-node vector index connection.
func WithRedisCluster(addrs []string, username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = addrs
		c.redisUsername = username
		c.redisPassword = password
	})
}

// WithKeyPrefix sets the redis key prefix for index records.
// Must end with ':'. Defaults to "claimsight:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithPostgres configures the document catalog connection.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.postgresDSN = dsn
	})
}

// WithEmbedder sets a custom text embedding provider.
// If the provider also implements BatchEmbedder, chunk ingestion
// vectorizes in a single API call per batch.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithOpenAI configures the built-in OpenAI embedding provider.
// Pass an empty model to use text-embedding-3-small.
func WithOpenAI(apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIKey = apiKey
		c.modelName = model
	})
}

// WithVectorDimensions sets the embedding vector dimension.
// Defaults to 1536 (text-embedding-3-small).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithEmbeddingCache enables redis-backed embedding caching with the
// given TTL. Zero disables caching (default).
func WithEmbeddingCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithSuggestTuning overrides the suggestion pipeline knobs: candidate
// overfetch factor, per-call timeout for embedding and index calls, and
// the retry backoff. Zero values keep the defaults (3, 30s, 200ms).
func WithSuggestTuning(overfetch int, callTimeout, retryBackoff time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.suggestOverfetch = overfetch
		c.suggestTimeout = callTimeout
		c.suggestBackoff = retryBackoff
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
