// Package extract produces a single linear text stream from uploaded
// documents (plain text, Markdown, DOCX, PDF, PPTX) for downstream
// vocabulary term extraction.
package extract

import (
	"os"
	"path/filepath"
	"strings"
)

const legacyPptMessage = "legacy .ppt files are not supported directly; please save the file as .pptx or .pdf and try again"

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content.
// Plain text files (.txt, .md) are returned verbatim after UTF-8 validation.
// DOCX yields one output line per paragraph; PDF yields the text layer of
// the page stream; PPTX yields each non-empty slide's text preceded by a
// "--- SLIDE <name> ---" marker line, in numeric slide order.
// All failures are *Error values classified by Reason.
func (e *Extractor) Extract(path string) (string, error) {
	format := DetectFormat(path)
	switch format {
	case FormatLegacyPpt:
		return "", failf(ReasonUnsupportedFormat, legacyPptMessage)
	case FormatUnknown:
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if ext == "" {
			return "", failf(ReasonUnsupportedFormat, "could not determine file type of %s", filepath.Base(path))
		}
		return "", failf(ReasonUnsupportedFormat, "unsupported file type: %s", ext)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", failf(ReasonIO, "failed to read file: %v", err)
	}
	return e.ExtractBytes(content, format)
}

// ExtractBytes extracts text from in-memory content of a known format.
// FormatUnknown and FormatLegacyPpt are rejected the same way Extract
// rejects them.
func (e *Extractor) ExtractBytes(content []byte, format Format) (string, error) {
	switch format {
	case FormatPlainText:
		return extractPlain(content)
	case FormatDocx:
		return extractDocx(content)
	case FormatPdf:
		return extractPDF(content)
	case FormatPptx:
		return extractPPTX(content)
	case FormatLegacyPpt:
		return "", failf(ReasonUnsupportedFormat, legacyPptMessage)
	default:
		return "", failf(ReasonUnsupportedFormat, "unsupported file type")
	}
}
