// Package suggest implements the suggestion pipeline: normalize the case
// context, embed the query, KNN search, threshold + dedupe + rank, resolve
// citations, annotate context matches.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/casecontext"
	"github.com/claimsight/claimsight/internal/domain/search"
	"github.com/claimsight/claimsight/internal/domain/suggestion"
	"github.com/claimsight/claimsight/internal/metrics"
)

// Config holds the pipeline tunables.
type Config struct {
	// OverfetchFactor multiplies the requested limit for the KNN candidate
	// pool, leaving headroom for threshold filtering and dedupe.
	OverfetchFactor int
	// CallTimeout bounds each embedding and index call attempt.
	CallTimeout time.Duration
	// RetryBackoff is the pause before the single retry of a failed
	// embedding or index call.
	RetryBackoff time.Duration
}

const (
	defaultOverfetchFactor = 3
	defaultCallTimeout     = 30 * time.Second
	defaultRetryBackoff    = 200 * time.Millisecond
)

// Service runs the suggestion pipeline.
type Service struct {
	embed     Embedder
	index     Index
	citations CitationResolver
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a suggestion service. Zero config fields fall back to defaults.
func New(embed Embedder, index Index, citations CitationResolver, cfg Config, logger *zap.Logger) *Service {
	if cfg.OverfetchFactor <= 0 {
		cfg.OverfetchFactor = defaultOverfetchFactor
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		embed:     embed,
		index:     index,
		citations: citations,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Suggest normalizes the case context into a query and runs the pipeline.
// An invalid context fails before any embedding or index I/O.
func (s *Service) Suggest(ctx context.Context, cc *casecontext.Context) ([]suggestion.Result, error) {
	text, err := cc.Normalize()
	if err != nil {
		return nil, err
	}

	q, err := search.New(text, 0, 0, search.Filters{})
	if err != nil {
		return nil, fmt.Errorf("build query from context %s: %w", cc.CaseID, err)
	}

	match := suggestion.ContextMatch{
		Query:         text,
		MatchedFields: cc.MatchedFields(),
		Tags:          cc.Tags,
	}
	return s.run(ctx, q, match, "context")
}

// Search runs the pipeline for a literal text query.
func (s *Service) Search(ctx context.Context, q search.Query) ([]suggestion.Result, error) {
	if q.Text() == "" {
		return nil, domain.ErrEmptyQuery
	}
	return s.run(ctx, q, suggestion.ContextMatch{Query: q.Text()}, "search")
}

func (s *Service) run(ctx context.Context, q search.Query, match suggestion.ContextMatch, source string) ([]suggestion.Result, error) {
	start := time.Now()

	results, err := s.pipeline(ctx, q, match)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SuggestRequestsTotal.WithLabelValues(source, status).Inc()
	metrics.SuggestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.SuggestResults.Observe(float64(len(results)))
	}
	return results, err
}

func (s *Service) pipeline(ctx context.Context, q search.Query, match suggestion.ContextMatch) ([]suggestion.Result, error) {
	vector, err := s.embedQuery(ctx, q.Text())
	if err != nil {
		return nil, err
	}

	hits, err := s.searchIndex(ctx, vector, q.Filters(), q.Limit()*s.cfg.OverfetchFactor)
	if err != nil {
		return nil, err
	}

	hits = filterByThreshold(hits, q.Threshold())
	hits = dedupeByPage(hits)
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score() > hits[j].Score()
	})
	if len(hits) > q.Limit() {
		hits = hits[:q.Limit()]
	}

	return s.resolveResults(ctx, hits, match), nil
}

// embedQuery runs the embedding call with one retry. Every failure mode is
// surfaced as ErrEmbeddingUnavailable.
func (s *Service) embedQuery(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			if err := s.backoff(ctx); err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
			}
			s.logger.Warn("retrying embedding call", zap.Error(lastErr))
		}

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		res, err := s.embed.Embed(callCtx, text)
		cancel()
		if err == nil {
			return res.Embedding, nil
		}
		lastErr = err
	}

	if errors.Is(lastErr, domain.ErrEmbeddingUnavailable) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, lastErr)
}

// searchIndex runs the KNN call with one retry. Failures are surfaced as
// ErrIndexUnavailable.
func (s *Service) searchIndex(ctx context.Context, vector []float32, filters search.Filters, k int) ([]search.Hit, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			if err := s.backoff(ctx); err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
			}
			s.logger.Warn("retrying index search", zap.Error(lastErr))
		}

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		hits, err := s.index.Search(callCtx, vector, filters, k)
		cancel()
		if err == nil {
			return hits, nil
		}
		lastErr = err
	}

	if errors.Is(lastErr, domain.ErrIndexUnavailable) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, lastErr)
}

func (s *Service) backoff(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.cfg.RetryBackoff):
		return nil
	}
}

// resolveResults builds final suggestions, resolving a citation per hit.
// A hit whose citation cannot be resolved is dropped with a warning; the
// call itself never fails on citation errors.
func (s *Service) resolveResults(ctx context.Context, hits []search.Hit, match suggestion.ContextMatch) []suggestion.Result {
	results := make([]suggestion.Result, 0, len(hits))
	for _, h := range hits {
		c := h.Chunk()

		cit, err := s.citations.ResolveCitation(ctx, c.DocumentID(), c.ID())
		if err != nil {
			s.logger.Warn("dropping suggestion, citation resolution failed",
				zap.String("document_id", c.DocumentID()),
				zap.String("chunk_id", c.ID()),
				zap.Error(err),
			)
			metrics.CitationDropsTotal.Inc()
			continue
		}

		itemMatch := match
		itemMatch.SectionTitle = c.SectionTitle()

		res, err := suggestion.New(
			uuid.NewString(),
			h.DocumentTitle(),
			c.Content(),
			h.Score(),
			c.DocumentID(),
			c.PageNumber(),
			c.ParagraphNumber(),
			[]suggestion.Citation{cit},
			itemMatch,
			s.now(),
		)
		if err != nil {
			s.logger.Warn("dropping malformed suggestion",
				zap.String("chunk_id", c.ID()),
				zap.Error(err),
			)
			continue
		}
		results = append(results, res)
	}
	return results
}

func filterByThreshold(hits []search.Hit, threshold float64) []search.Hit {
	kept := hits[:0]
	for _, h := range hits {
		if h.Score() >= threshold {
			kept = append(kept, h)
		}
	}
	return kept
}

// dedupeByPage collapses hits sharing (document_id, page_number), keeping the
// highest score at the first occurrence's position.
func dedupeByPage(hits []search.Hit) []search.Hit {
	type pageKey struct {
		documentID string
		page       int
	}

	out := make([]search.Hit, 0, len(hits))
	seen := make(map[pageKey]int, len(hits))
	for _, h := range hits {
		c := h.Chunk()
		k := pageKey{c.DocumentID(), c.PageNumber()}
		if i, ok := seen[k]; ok {
			if h.Score() > out[i].Score() {
				out[i] = h
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, h)
	}
	return out
}
