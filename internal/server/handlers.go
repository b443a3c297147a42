package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joemacstevens/ohg-scribe/internal/extract"
	"github.com/joemacstevens/ohg-scribe/internal/history"
	"github.com/joemacstevens/ohg-scribe/internal/vocab"
)

type extractRequest struct {
	Path string `json:"path"`
}

type extractResponse struct {
	Text string `json:"text"`
}

// extractStatus maps an extraction failure reason to an HTTP status.
func extractStatus(err error) int {
	reason, ok := extract.ReasonOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch reason {
	case extract.ReasonUnsupportedFormat:
		return http.StatusBadRequest
	case extract.ReasonIO:
		return http.StatusNotFound
	case extract.ReasonMalformedContainer, extract.ReasonNoText:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("extract request", zap.String("path", req.Path))
	text, err := s.extractor.Extract(req.Path)
	if err != nil {
		s.logger.Warn("extraction failed", zap.String("path", req.Path), zap.Error(err))
		s.respondError(w, extractStatus(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, extractResponse{Text: text})
}

type termsRequest struct {
	Text string `json:"text"`
	Path string `json:"path"`
}

// handleExtractTerms classifies document text into vocabulary terms. The
// caller sends either raw text or a path, in which case the document is
// extracted first.
func (s *Server) handleExtractTerms(w http.ResponseWriter, r *http.Request) {
	var req termsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text := req.Text
	if text == "" && req.Path != "" {
		extracted, err := s.extractor.Extract(req.Path)
		if err != nil {
			s.respondError(w, extractStatus(err), err.Error())
			return
		}
		text = extracted
	}
	if text == "" {
		s.respondError(w, http.StatusBadRequest, "text or path is required")
		return
	}
	vocab, err := s.terms.ExtractTerms(r.Context(), text)
	if err != nil {
		s.logger.Error("term extraction failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, vocab)
}

func (s *Server) handleListVocabularies(w http.ResponseWriter, r *http.Request) {
	data, err := s.vocab.Load()
	if err != nil {
		s.logger.Error("load vocabularies failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, data)
}

type createVocabularyRequest struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Terms    []string `json:"terms"`
}

func (s *Server) handleCreateVocabulary(w http.ResponseWriter, r *http.Request) {
	var req createVocabularyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := s.vocab.Create(req.Name, req.Category, req.Terms)
	if err != nil {
		s.logger.Error("create vocabulary failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, v)
}

func (s *Server) handleUpdateVocabulary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req createVocabularyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := s.vocab.Update(id, req.Name, req.Category, req.Terms)
	if err != nil {
		s.respondVocabError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteVocabulary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.vocab.Delete(id); err != nil {
		s.respondVocabError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type duplicateVocabularyRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleDuplicateVocabulary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req duplicateVocabularyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := s.vocab.Duplicate(id, req.Name)
	if err != nil {
		s.respondVocabError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, v)
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := s.vocab.CreateCategory(req.Name)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleExportVocabularies(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="vocabularies.xlsx"`)
		if err := s.vocab.ExportXLSX(w); err != nil {
			s.logger.Error("export vocabularies failed", zap.Error(err))
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := s.vocab.ExportJSON(w); err != nil {
		s.logger.Error("export vocabularies failed", zap.Error(err))
	}
}

func (s *Server) handleImportVocabularies(w http.ResponseWriter, r *http.Request) {
	var count int
	var err error
	if r.URL.Query().Get("format") == "xlsx" {
		var created []vocab.Vocabulary
		created, err = s.vocab.ImportXLSX(r.Body)
		count = len(created)
	} else {
		count, err = s.vocab.ImportJSON(r.Body)
	}
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"imported": count})
}

func (s *Server) respondVocabError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vocab.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, vocab.ErrSystemVocabulary):
		s.respondError(w, http.StatusForbidden, err.Error())
	default:
		s.logger.Error("vocabulary operation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	var entry history.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil || entry.Text == "" {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	saved, err := s.hist.Save(r.Context(), &entry)
	if err != nil {
		s.logger.Error("save history failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.histIndex.Add(saved); err != nil {
		s.logger.Warn("index history entry failed", zap.String("id", saved.ID), zap.Error(err))
	}
	s.respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.hist.List(r.Context())
	if err != nil {
		s.logger.Error("list history failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summaries == nil {
		summaries = []history.Summary{}
	}
	s.respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := s.hist.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.hist.Delete(r.Context(), id); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.histIndex.Remove(id); err != nil {
		s.logger.Warn("deindex history entry failed", zap.String("id", id), zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type searchHistoryResult struct {
	Entry *history.Entry `json:"entry"`
	Score float64        `json:"score"`
}

func (s *Server) handleSearchHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	hits, err := s.histIndex.Search(query, limit)
	if err != nil {
		s.logger.Error("history search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	results := make([]searchHistoryResult, 0, len(hits))
	for _, hit := range hits {
		entry, err := s.hist.Get(r.Context(), hit.ID)
		if err != nil {
			// Index and store can drift briefly after deletes; skip strays.
			continue
		}
		results = append(results, searchHistoryResult{Entry: entry, Score: hit.Score})
	}
	s.respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
