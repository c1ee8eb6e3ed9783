package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/config"
	dbredis "github.com/claimsight/claimsight/internal/db/redis"
	"github.com/claimsight/claimsight/internal/domain"
	logpkg "github.com/claimsight/claimsight/internal/logger"
	"github.com/claimsight/claimsight/internal/metrics"
	budgetrepo "github.com/claimsight/claimsight/internal/repository/budget"
	"github.com/claimsight/claimsight/internal/repository/catalog"
	"github.com/claimsight/claimsight/internal/repository/embcache"
	indexrepo "github.com/claimsight/claimsight/internal/repository/index"
	chiTransport "github.com/claimsight/claimsight/internal/transport/chi"
	openaiemb "github.com/claimsight/claimsight/internal/transport/openai"
	"github.com/claimsight/claimsight/internal/transport/ws"
	embeddinguc "github.com/claimsight/claimsight/internal/usecase/embedding"
	healthuc "github.com/claimsight/claimsight/internal/usecase/health"
	ingestuc "github.com/claimsight/claimsight/internal/usecase/ingest"
	suggestuc "github.com/claimsight/claimsight/internal/usecase/suggest"
	usageuc "github.com/claimsight/claimsight/internal/usecase/usage"
	"github.com/claimsight/claimsight/internal/version"
)

// embedder is the full vectorization contract the services consume.
type embedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

func main() {
	// Local development reads OPENAI_API_KEY etc. from .env
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting claimsight API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	domain.SetKeyPrefix(cfg.Redis.KeyPrefix)

	// Vector index store
	store, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create redis store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Redis not ready", zap.Error(err))
	}
	logger.Info("Connected to redis")

	// Document catalog
	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("Failed to create postgres pool", zap.Error(err))
	}
	defer pool.Close()

	catalogRepo := catalog.New(pool)
	if err := catalogRepo.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure catalog schema", zap.Error(err))
	}
	logger.Info("Connected to postgres")

	indexRepo := indexrepo.New(store, cfg.Embedding.Dimensions)
	if err := indexRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure vector index", zap.Error(err))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSuggestMetrics()

	// Token budget tracker, shared by the embedder chain and the usage endpoint.
	// Counters survive restarts through the Redis-backed store.
	var budget *embeddinguc.BudgetTracker
	if cfg.Embedding.Budget.DailyTokenLimit > 0 || cfg.Embedding.Budget.MonthlyTokenLimit > 0 {
		action := embeddinguc.BudgetActionWarn
		if cfg.Embedding.Budget.Action == "reject" {
			action = embeddinguc.BudgetActionReject
		}
		budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
		budget = embeddinguc.NewBudgetTracker(
			"openai",
			cfg.Embedding.Budget.DailyTokenLimit,
			cfg.Embedding.Budget.MonthlyTokenLimit,
			action, logger,
		).WithStore(ctx, budgetStore)
		logger.Info("Embedding budget enabled",
			zap.Int64("daily_limit", cfg.Embedding.Budget.DailyTokenLimit),
			zap.Int64("monthly_limit", cfg.Embedding.Budget.MonthlyTokenLimit),
			zap.String("action", string(action)),
		)
	}

	// Embedder chain: OpenAI -> budget-instrumented -> cached.
	// Cache goes outermost so cache hits never burn budget.
	base := openaiemb.NewEmbedder(&openaiemb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		User:       cfg.Embedding.User,
		Provider:   "openai",
		Logger:     logger,
	})

	// A typed nil *BudgetTracker inside the interface would defeat the
	// nil checks downstream, so only assign when the tracker exists.
	var budgetChecker embeddinguc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}
	instrumented := embeddinguc.NewInstrumentedEmbedder(
		base, "openai", cfg.Embedding.Model, budgetChecker, logger,
	)

	var emb embedder = instrumented
	if cfg.Cache.EmbeddingTTLSec > 0 {
		emb = embcache.New(
			instrumented, store,
			time.Duration(cfg.Cache.EmbeddingTTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger,
		)
	}
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Cache.EmbeddingTTLSec > 0),
	)

	// Use case services
	suggestSvc := suggestuc.New(emb, indexRepo, catalogRepo, suggestuc.Config{
		OverfetchFactor: cfg.Suggest.OverfetchFactor,
		CallTimeout:     time.Duration(cfg.Suggest.CallTimeoutSec) * time.Second,
		RetryBackoff:    time.Duration(cfg.Suggest.RetryBackoffMS) * time.Millisecond,
	}, logger)
	ingestSvc := ingestuc.New(catalogRepo, indexRepo, emb, logger)
	healthSvc := healthuc.New(store, catalogRepo, base)

	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader)

	// Transports
	server := chiTransport.NewServer(suggestSvc, ingestSvc, healthSvc, usageSvc, logger)

	hub := ws.NewHub(logger)
	wsHandler := ws.NewHandler(
		hub, suggestSvc,
		time.Duration(cfg.Suggest.DebounceMS)*time.Millisecond,
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)
	wsHandler.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
