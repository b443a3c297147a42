// Package cli provides output formatting for the Scribe CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/joemacstevens/ohg-scribe/internal/history"
	"github.com/joemacstevens/ohg-scribe/internal/terms"
	"github.com/joemacstevens/ohg-scribe/internal/vocab"
	"github.com/joemacstevens/ohg-scribe/pkg/utils"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteTerms writes an extracted vocabulary to w in the given format.
func WriteTerms(w io.Writer, extracted *terms.ExtractedVocabulary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, extracted)
	}
	fmt.Fprintf(w, "Suggested name: %s\n", extracted.SuggestedName)
	for _, category := range extracted.Categories {
		fmt.Fprintf(w, "\n%s (%d terms)\n", category.Name, len(category.Terms))
		for _, term := range category.Terms {
			fmt.Fprintf(w, "  - %s\n", term)
		}
	}
	return nil
}

// WriteVocabularies writes categories and vocabularies to w in the given format.
func WriteVocabularies(w io.Writer, data *vocab.Data, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, data)
	}
	for _, category := range data.Categories {
		marker := ""
		if category.IsSystem {
			marker = " [system]"
		}
		fmt.Fprintf(w, "%s%s\n", category.Name, marker)
		for _, v := range data.Vocabularies {
			if v.Category != category.ID {
				continue
			}
			fmt.Fprintf(w, "  %s  %s (%d terms)\n", v.ID, v.Name, len(v.Terms))
		}
	}
	return nil
}

// WriteHistoryList writes history summaries to w in the given format.
func WriteHistoryList(w io.Writer, summaries []history.Summary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No history entries.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%s  %s  %s\n",
			s.CreatedAt.Format("2006-01-02 15:04"), s.ID, utils.Truncate(s.Title, 60))
	}
	return nil
}
