package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/joemacstevens/ohg-scribe/internal/config"
	"github.com/joemacstevens/ohg-scribe/internal/extract"
	"github.com/joemacstevens/ohg-scribe/internal/history"
	"github.com/joemacstevens/ohg-scribe/internal/terms"
	"github.com/joemacstevens/ohg-scribe/internal/vocab"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	hist, err := history.NewStore(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("history store: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })
	histIndex, err := history.NewIndex(filepath.Join(dir, "history-index"))
	if err != nil {
		t.Fatalf("history index: %v", err)
	}
	t.Cleanup(func() { _ = histIndex.Close() })

	return NewServer(
		extract.NewExtractor(),
		vocab.NewStore(filepath.Join(dir, "vocab"), ""),
		hist,
		histIndex,
		terms.NewClient("test-key"),
		&config.ServerConfig{Host: "localhost", Port: 0},
		zap.NewNop(),
	)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	r := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestHandleExtract(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("meeting notes"), 0600); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/extract", extractRequest{Path: path})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp extractResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Text != "meeting notes" {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestHandleExtract_unsupportedIs400(t *testing.T) {
	srv := newTestServer(t)
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/extract", extractRequest{Path: "file.xyz"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestHandleExtract_missingFileIs404(t *testing.T) {
	srv := newTestServer(t)
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/extract", extractRequest{Path: "/nonexistent/file.txt"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestHandleExtract_emptyBody(t *testing.T) {
	srv := newTestServer(t)
	w := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/extract", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestVocabularyCRUD(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodPost, "/api/v1/vocabularies", createVocabularyRequest{
		Name: "Acronyms", Terms: []string{"EHR"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created vocab.Vocabulary
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/vocabularies", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var data vocab.Data
	if err := json.Unmarshal(w.Body.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Vocabularies) != 1 {
		t.Errorf("vocabularies = %+v", data.Vocabularies)
	}

	w = doJSON(t, router, http.MethodPut, "/api/v1/vocabularies/"+created.ID, createVocabularyRequest{
		Name: "Acronyms v2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodDelete, "/api/v1/vocabularies/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/v1/vocabularies/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", w.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodPost, "/api/v1/history", history.Entry{
		Title: "Oncology call",
		Text:  "We discussed pembrolizumab dosing",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body = %s", w.Code, w.Body.String())
	}
	var saved history.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatal(err)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/history", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var summaries []history.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].Title != "Oncology call" {
		t.Errorf("summaries = %+v", summaries)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/history/search?q=pembrolizumab", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, body = %s", w.Code, w.Body.String())
	}
	var results []searchHistoryResult
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Entry.ID != saved.ID {
		t.Errorf("results = %+v", results)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/v1/history/"+saved.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/v1/history/"+saved.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
}

func TestHandleSearchHistory_requiresQuery(t *testing.T) {
	srv := newTestServer(t)
	w := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/history/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	w := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestServerStop_withoutStart(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
