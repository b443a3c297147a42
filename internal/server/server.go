// Package server provides the HTTP API for the Scribe backend.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joemacstevens/ohg-scribe/internal/config"
	"github.com/joemacstevens/ohg-scribe/internal/extract"
	"github.com/joemacstevens/ohg-scribe/internal/history"
	"github.com/joemacstevens/ohg-scribe/internal/terms"
	"github.com/joemacstevens/ohg-scribe/internal/vocab"
)

// Server is the HTTP server for the Scribe API.
type Server struct {
	extractor *extract.Extractor
	vocab     *vocab.Store
	hist      *history.Store
	histIndex *history.Index
	terms     *terms.Client
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	extractor *extract.Extractor,
	vocabStore *vocab.Store,
	hist *history.Store,
	histIndex *history.Index,
	termsClient *terms.Client,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		extractor: extractor,
		vocab:     vocabStore,
		hist:      hist,
		histIndex: histIndex,
		terms:     termsClient,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(180 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/extract", s.handleExtract)
	r.Post("/api/v1/terms", s.handleExtractTerms)

	r.Get("/api/v1/vocabularies", s.handleListVocabularies)
	r.Post("/api/v1/vocabularies", s.handleCreateVocabulary)
	r.Put("/api/v1/vocabularies/{id}", s.handleUpdateVocabulary)
	r.Delete("/api/v1/vocabularies/{id}", s.handleDeleteVocabulary)
	r.Post("/api/v1/vocabularies/{id}/duplicate", s.handleDuplicateVocabulary)
	r.Post("/api/v1/vocabularies/categories", s.handleCreateCategory)
	r.Get("/api/v1/vocabularies/export", s.handleExportVocabularies)
	r.Post("/api/v1/vocabularies/import", s.handleImportVocabularies)

	r.Post("/api/v1/history", s.handleSaveHistory)
	r.Get("/api/v1/history", s.handleListHistory)
	r.Get("/api/v1/history/search", s.handleSearchHistory)
	r.Get("/api/v1/history/{id}", s.handleGetHistory)
	r.Delete("/api/v1/history/{id}", s.handleDeleteHistory)

	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
