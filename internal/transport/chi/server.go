// Package chi is the HTTP transport: request decoding, routing, auth, and
// domain-error mapping for the search API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/worshipdeck/sheetsearch/internal/domain"
	"github.com/worshipdeck/sheetsearch/internal/version"

	healthuc "github.com/worshipdeck/sheetsearch/internal/usecase/health"
	responduc "github.com/worshipdeck/sheetsearch/internal/usecase/respond"
	retrieveuc "github.com/worshipdeck/sheetsearch/internal/usecase/retrieve"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeEmbeddingProvider = "embedding_provider_error"
	codeInternalError     = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search pipeline over HTTP.
type Server struct {
	search    *retrieveuc.Service
	assembler *responduc.Assembler
	health    *healthuc.Service
	logger    *zap.Logger

	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *retrieveuc.Service,
	assembler *responduc.Assembler,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		assembler: assembler,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidKey, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrMissingCandidateID, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/api/v1/search", s.Search)
	r.Get("/api/v1/songs/keys/{key}", s.SongsByKey)
	r.Get("/health", s.Health)
	r.Get("/version", s.Version)
	r.Get("/metrics", s.Metrics)
}

type searchRequest struct {
	Query   string   `json:"query"`
	Lang    string   `json:"lang,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	History []string `json:"history,omitempty"`
}

type searchResponse struct {
	Outcome domain.Outcome     `json:"outcome"`
	Message string             `json:"message"`
	Songs   []domain.SongGroup `json:"songs"`
	Keys    []string           `json:"keys,omitempty"`
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out, err := s.search.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	msg := s.assembler.Message(r.Context(), req.Query, req.Lang, req.History, &out)

	writeJSON(w, http.StatusOK, searchResponse{
		Outcome: out.Outcome,
		Message: msg,
		Songs:   out.Songs,
		Keys:    out.Keys,
	})
}

// SongsByKey handles GET /api/v1/songs/keys/{key}.
func (s *Server) SongsByKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be an integer")
			return
		}
		limit = n
	}

	out, err := s.search.SongsInKey(r.Context(), key, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Outcome: out.Outcome,
		Songs:   out.Songs,
		Keys:    out.Keys,
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Version handles GET /version.
func (s *Server) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrInvalidKey,
		domain.ErrMissingCandidateID,
		domain.ErrEmbeddingProviderError,
		domain.ErrRerankUnavailable,
		domain.ErrGeneratorUnavailable,
		domain.ErrKeywordSearchNotSupported,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
