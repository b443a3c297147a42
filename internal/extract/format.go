package extract

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported document format, derived from the file
// extension. The extension is trusted; no content sniffing is performed.
type Format int

const (
	// FormatUnknown is any extension (or missing extension) not listed below.
	FormatUnknown Format = iota
	// FormatPlainText covers .txt and .md files.
	FormatPlainText
	// FormatDocx is an Office Open XML word-processing document.
	FormatDocx
	// FormatPdf is a PDF document.
	FormatPdf
	// FormatPptx is an Office Open XML presentation.
	FormatPptx
	// FormatLegacyPpt is the pre-OOXML PowerPoint format, which is not
	// supported; callers get an actionable conversion message instead.
	FormatLegacyPpt
)

// String returns a short name for the format, used in log fields.
func (f Format) String() string {
	switch f {
	case FormatPlainText:
		return "plain"
	case FormatDocx:
		return "docx"
	case FormatPdf:
		return "pdf"
	case FormatPptx:
		return "pptx"
	case FormatLegacyPpt:
		return "ppt"
	default:
		return "unknown"
	}
}

// DetectFormat maps the path's extension (case-insensitive) to a Format.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return FormatPlainText
	case ".docx":
		return FormatDocx
	case ".pdf":
		return FormatPdf
	case ".pptx":
		return FormatPptx
	case ".ppt":
		return FormatLegacyPpt
	default:
		return FormatUnknown
	}
}
