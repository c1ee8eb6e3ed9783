// Package chi implements the HTTP API: search, context suggestions,
// document catalog management and health.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/domain"
	"github.com/claimsight/claimsight/internal/domain/casecontext"
	"github.com/claimsight/claimsight/internal/transport/api"
	healthuc "github.com/claimsight/claimsight/internal/usecase/health"
	usageuc "github.com/claimsight/claimsight/internal/usecase/usage"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the suggestion, ingest and health services into HTTP handlers.
type Server struct {
	suggest       Suggester
	ingest        Ingester
	health        HealthChecker
	usage         UsageReporter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(suggest Suggester, ingest Ingester, health HealthChecker, usage UsageReporter, logger *zap.Logger) *Server {
	s := &Server{
		suggest: suggest,
		ingest:  ingest,
		health:  health,
		usage:   usage,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidContext, http.StatusBadRequest, api.CodeInvalidContext),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, api.CodeEmptyQuery),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, api.CodeInvalidDocument),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, api.CodeDocumentNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, api.CodeAlreadyExists),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, api.CodeEmbeddingUnavailable),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, api.CodeIndexUnavailable),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusTooManyRequests, api.CodeQuotaExceeded),
	}
	return s
}

// Mount registers all routes on the router.
func (s *Server) Mount(r chirouter.Router) {
	r.Post("/api/search", s.handleSearch)
	r.Post("/api/context-suggestions", s.handleContextSuggestions)

	r.Post("/api/documents", s.handleRegisterDocument)
	r.Get("/api/documents", s.handleListDocuments)
	r.Get("/api/documents/{id}", s.handleGetDocument)
	r.Delete("/api/documents/{id}", s.handleDeleteDocument)
	r.Post("/api/documents/{id}/chunks", s.handleIngestChunks)

	r.Get("/api/usage", s.handleUsage)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
}

// handleUsage handles GET /api/usage?period=day|month.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	period := usageuc.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = usageuc.PeriodDay
	}
	writeJSON(w, http.StatusOK, s.usage.GetReport(r.Context(), period))
}

// handleSearch handles POST /api/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req api.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, api.CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	q, err := api.QueryFromAPI(req)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, api.CodeEmptyQuery, "query text is required")
			return
		}
		writeError(w, http.StatusBadRequest, api.CodeBadRequest, err.Error())
		return
	}

	results, err := s.suggest.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := api.ResultsToAPI(results)
	writeJSON(w, http.StatusOK, api.SuggestionListResponse{Items: items, Total: len(items)})
}

// handleContextSuggestions handles POST /api/context-suggestions: the
// synchronous variant of the WebSocket flow.
func (s *Server) handleContextSuggestions(w http.ResponseWriter, r *http.Request) {
	var cc casecontext.Context
	if err := json.NewDecoder(r.Body).Decode(&cc); err != nil {
		writeError(w, http.StatusBadRequest, api.CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	results, err := s.suggest.Suggest(r.Context(), &cc)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := api.ResultsToAPI(results)
	writeJSON(w, http.StatusOK, api.SuggestionListResponse{Items: items, Total: len(items)})
}

// handleRegisterDocument handles POST /api/documents.
func (s *Server) handleRegisterDocument(w http.ResponseWriter, r *http.Request) {
	var req api.DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, api.CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	doc, err := api.DocumentFromAPI(req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if err := s.ingest.RegisterDocument(r.Context(), doc); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.DocumentToAPI(doc))
}

// handleListDocuments handles GET /api/documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ingest.ListDocuments(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]api.DocumentResponse, len(docs))
	for i, d := range docs {
		items[i] = api.DocumentToAPI(d)
	}
	writeJSON(w, http.StatusOK, items)
}

// handleGetDocument handles GET /api/documents/{id}.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")

	doc, err := s.ingest.GetDocument(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.DocumentToAPI(doc))
}

// handleDeleteDocument handles DELETE /api/documents/{id}.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")

	if err := s.ingest.DeleteDocument(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleIngestChunks handles POST /api/documents/{id}/chunks.
func (s *Server) handleIngestChunks(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")

	var req api.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, api.CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	chunks, err := api.ChunksFromAPI(id, req.Chunks)
	if err != nil {
		writeError(w, http.StatusBadRequest, api.CodeInvalidDocument, err.Error())
		return
	}

	n, err := s.ingest.IngestChunks(r.Context(), id, chunks)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.IngestResponse{DocumentID: id, ChunksIndexed: n})
}

// handleHealth handles GET /health. Degraded still answers 200; only total
// failure flips to 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, api.HealthResponse{Status: string(report.Status), Checks: checks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code api.ErrorCode, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns the sentinel text for known errors, hiding
// internal details for everything else.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidContext,
		domain.ErrEmptyQuery,
		domain.ErrInvalidDocument,
		domain.ErrDocumentNotFound,
		domain.ErrAlreadyExists,
		domain.ErrEmbeddingUnavailable,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code api.ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, api.CodeInternalError, "internal error")
}
