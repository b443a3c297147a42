// Package terms shapes the request/response round trip to an
// OpenAI-compatible chat-completions API that classifies document text into
// vocabulary terms. The call is a single shot: extraction input is
// deterministic, so nothing is retried.
package terms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDocumentChars caps how much document text is sent; the API has input
// limits and term density flattens out well before this.
const maxDocumentChars = 60000

const defaultBaseURL = "https://api.openai.com/v1"

// ExtractedVocabulary is the classifier's structured answer.
type ExtractedVocabulary struct {
	Categories    []ExtractedCategory `json:"categories"`
	SuggestedName string              `json:"suggested_name"`
}

// ExtractedCategory is one named group of extracted terms.
type ExtractedCategory struct {
	Name  string   `json:"name"`
	Terms []string `json:"terms"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
	Messages       []message      `json:"messages"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls the term-extraction API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	maxTokens  int
	apiKey     string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used for OpenAI-compatible
// endpoints and in tests).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens overrides the response token budget.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient returns a client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    defaultBaseURL,
		model:      "gpt-4o-mini",
		maxTokens:  4096,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// buildRequest shapes the chat request for the given document text,
// truncating oversized input.
func (c *Client) buildRequest(text string) chatRequest {
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars]
	}
	return chatRequest{
		Model:          c.model,
		MaxTokens:      c.maxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
		Messages: []message{
			{Role: "system", Content: extractionPrompt},
			{Role: "user", Content: fmt.Sprintf("Extract domain-specific terms from this document:\n\n%s", text)},
		},
	}
}

// ExtractTerms sends text to the classifier and parses its answer.
func (c *Client) ExtractTerms(ctx context.Context, text string) (*ExtractedVocabulary, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no API key configured for term extraction")
	}

	body, err := json.Marshal(c.buildRequest(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("term extraction API error %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return parseResponse(resp.Body)
}

// parseResponse decodes the chat completion and the JSON vocabulary inside
// its first choice.
func parseResponse(r io.Reader) (*ExtractedVocabulary, error) {
	var cr chatResponse
	if err := json.NewDecoder(r).Decode(&cr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}
	var vocab ExtractedVocabulary
	if err := json.Unmarshal([]byte(cr.Choices[0].Message.Content), &vocab); err != nil {
		return nil, fmt.Errorf("failed to parse extracted terms: %w", err)
	}
	return &vocab, nil
}
