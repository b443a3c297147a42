package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

// buildDocx zips a word/document.xml with the given body markup.
func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDocx_paragraphsBecomeLines(t *testing.T) {
	content := buildDocx(t,
		`<w:p><w:r><w:t>Hello</w:t></w:r></w:p>`+
			`<w:p/>`+
			`<w:p><w:r><w:t>World</w:t></w:r></w:p>`)

	got, err := extractDocx(content)
	if err != nil {
		t.Fatalf("extractDocx: %v", err)
	}
	if got != "Hello\n\nWorld\n" {
		t.Errorf("got %q, want %q", got, "Hello\n\nWorld\n")
	}
}

func TestExtractDocx_runsMergeWithoutSeparator(t *testing.T) {
	// A bold middle run is semantically the same text and must merge.
	content := buildDocx(t,
		`<w:p>`+
			`<w:r><w:t>Intra</w:t></w:r>`+
			`<w:r><w:rPr><w:b/></w:rPr><w:t>venous</w:t></w:r>`+
			`<w:r><w:t xml:space="preserve"> drip</w:t></w:r>`+
			`</w:p>`)

	got, err := extractDocx(content)
	if err != nil {
		t.Fatalf("extractDocx: %v", err)
	}
	if got != "Intravenous drip\n" {
		t.Errorf("got %q", got)
	}
}

func TestExtractDocx_ignoresNonTextNodes(t *testing.T) {
	content := buildDocx(t,
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr>`+
			`<w:r><w:t>Title</w:t></w:r></w:p>`)

	got, err := extractDocx(content)
	if err != nil {
		t.Fatalf("extractDocx: %v", err)
	}
	if got != "Title\n" {
		t.Errorf("got %q", got)
	}
}

func TestExtractDocx_notAZip(t *testing.T) {
	_, err := extractDocx([]byte("plain bytes, not an archive"))
	if err == nil {
		t.Fatal("expected error")
	}
	if reason, _ := ReasonOf(err); reason != ReasonMalformedContainer {
		t.Errorf("reason = %v, want ReasonMalformedContainer", reason)
	}
}

func TestExtractDocx_missingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/styles.xml")
	_, _ = w.Write([]byte("<styles/>"))
	_ = zw.Close()

	_, err := extractDocx(buf.Bytes())
	if err == nil {
		t.Fatal("expected error")
	}
	if reason, _ := ReasonOf(err); reason != ReasonMalformedContainer {
		t.Errorf("reason = %v, want ReasonMalformedContainer", reason)
	}
	if !strings.Contains(err.Error(), "word/document.xml") {
		t.Errorf("message %q does not name the missing part", err.Error())
	}
}

func TestExtractDocx_malformedDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/document.xml")
	_, _ = w.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>oops`))
	_ = zw.Close()

	_, err := extractDocx(buf.Bytes())
	if err == nil {
		t.Fatal("expected error for truncated document.xml")
	}
	if reason, _ := ReasonOf(err); reason != ReasonMalformedContainer {
		t.Errorf("reason = %v, want ReasonMalformedContainer", reason)
	}
}
