package terms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuildRequest(t *testing.T) {
	c := NewClient("key")
	req := c.buildRequest("Some document text")
	if req.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", req.Model)
	}
	if req.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %q", req.ResponseFormat.Type)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[1].Content, "Some document text") {
		t.Errorf("user message %q lacks the document", req.Messages[1].Content)
	}
}

func TestBuildRequest_truncatesLongDocuments(t *testing.T) {
	c := NewClient("key")
	long := strings.Repeat("x", maxDocumentChars+1000)
	req := c.buildRequest(long)
	if len(req.Messages[1].Content) >= len(long) {
		t.Error("oversized document was not truncated")
	}
}

func TestParseResponse(t *testing.T) {
	payload := `{"choices":[{"message":{"content":"{\"categories\":[{\"name\":\"Acronyms\",\"terms\":[\"EHR\"]}],\"suggested_name\":\"Health IT\"}"}}]}`
	vocab, err := parseResponse(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if vocab.SuggestedName != "Health IT" {
		t.Errorf("suggested_name = %q", vocab.SuggestedName)
	}
	if len(vocab.Categories) != 1 || vocab.Categories[0].Terms[0] != "EHR" {
		t.Errorf("categories = %+v", vocab.Categories)
	}
}

func TestParseResponse_noChoices(t *testing.T) {
	if _, err := parseResponse(strings.NewReader(`{"choices":[]}`)); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestParseResponse_contentNotJSON(t *testing.T) {
	payload := `{"choices":[{"message":{"content":"sorry, I cannot"}}]}`
	if _, err := parseResponse(strings.NewReader(payload)); err == nil {
		t.Error("expected error for non-JSON content")
	}
}

func TestExtractTerms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		content, _ := json.Marshal(ExtractedVocabulary{
			Categories:    []ExtractedCategory{{Name: "Drug Names", Terms: []string{"pembrolizumab"}}},
			SuggestedName: "Oncology Deck",
		})
		resp := map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": string(content)}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	vocab, err := c.ExtractTerms(context.Background(), "slide text about pembrolizumab")
	if err != nil {
		t.Fatalf("ExtractTerms: %v", err)
	}
	if vocab.SuggestedName != "Oncology Deck" {
		t.Errorf("suggested_name = %q", vocab.SuggestedName)
	}
}

func TestExtractTerms_apiError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.ExtractTerms(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error %q does not carry the status code", err.Error())
	}
}

func TestExtractTerms_missingAPIKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.ExtractTerms(context.Background(), "text"); err == nil {
		t.Error("expected error without API key")
	}
}
