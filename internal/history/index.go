package history

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
)

// indexedEntry is the subset of an entry that gets indexed.
type indexedEntry struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Hit is one search result.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Index is a Bleve full-text index over transcripts, so past transcriptions
// can be found by what was said in them.
type Index struct {
	index bleve.Index
}

// NewIndex creates or opens a Bleve index at path. An existing index is
// reused; remove the directory to force a rebuild after mapping changes.
func NewIndex(path string) (*Index, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open history index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so exact
	// spoken terms match without stem surprises.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create history index: %w", err)
	}
	return &Index{index: index}, nil
}

// Add indexes an entry's title and transcript by ID.
func (i *Index) Add(entry *Entry) error {
	return i.index.Index(entry.ID, indexedEntry{Title: entry.Title, Text: entry.Text})
}

// Remove deletes an entry from the index.
func (i *Index) Remove(id string) error {
	return i.index.Delete(id)
}

// Search runs a match query over titles and transcripts, returning up to
// limit hits ordered by score.
func (i *Index) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	results, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("history search failed: %w", err)
	}
	hits := make([]Hit, len(results.Hits))
	for n, hit := range results.Hits {
		hits[n] = Hit{ID: hit.ID, Score: hit.Score}
	}
	return hits, nil
}

// Close closes the index.
func (i *Index) Close() error {
	return i.index.Close()
}
