// Package e2e provides end-to-end tests; this file builds minimal binary files for supported types.
package e2e

import (
	"archive/zip"
	"bytes"
)

// SupportedFileExtensions is the list of file extensions used in E2E file-based tests.
// Covers plain text (.txt, .md) and OOXML (.docx, .pptx). PDF is not generated here
// (no minimal PDF with extractable text).
var SupportedFileExtensions = []string{
	".txt", ".md", ".docx", ".pptx",
}

// MinimalFile returns the bytes of a minimal file of the given extension
// containing the given text. For plain types the content is the raw text;
// for binary types it is the container bytes.
func MinimalFile(ext, text string) []byte {
	switch ext {
	case ".docx":
		return minimalDocx(text)
	case ".pptx":
		return minimalPptx(text)
	default:
		return []byte(text)
	}
}

func minimalDocx(text string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

func minimalPptx(text string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("ppt/slides/slide1.xml")
	_, _ = fw.Write([]byte(`<p:sld xmlns:p="a" xmlns:a="b"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`))
	_ = w.Close()
	return buf.Bytes()
}
