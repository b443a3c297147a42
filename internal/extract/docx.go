package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
)

// docxDocumentPath is the main document part inside a .docx zip.
const docxDocumentPath = "word/document.xml"

// extractDocx extracts text from .docx bytes. DOCX is a ZIP containing
// word/document.xml (OOXML): a tree of paragraphs, each holding runs, each
// run holding text nodes. Run text within a paragraph is concatenated with
// no separator, so bold/italic runs merge back into ordinary text, and each
// paragraph (including empty ones) contributes exactly one output line.
func extractDocx(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", failf(ReasonMalformedContainer, "failed to parse docx: not a zip archive: %v", err)
	}

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == docxDocumentPath {
			rc, err := f.Open()
			if err != nil {
				return "", failf(ReasonMalformedContainer, "failed to parse docx: open %s: %v", f.Name, err)
			}
			doc = rc
			break
		}
	}
	if doc == nil {
		return "", failf(ReasonMalformedContainer, "failed to parse docx: %s not found in archive", docxDocumentPath)
	}
	defer doc.Close()

	text, err := walkDocumentXML(doc)
	if err != nil {
		return "", failf(ReasonMalformedContainer, "failed to parse docx: %v", err)
	}
	return text, nil
}

// walkDocumentXML streams the OOXML document body, accumulating <w:t> text
// nodes in run order and emitting a newline at each paragraph end.
func walkDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var out bytes.Buffer
	var inParagraph, inRun, inText bool

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
			case "r":
				inRun = inParagraph
			case "t":
				inText = inRun
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inParagraph {
					out.WriteByte('\n')
				}
				inParagraph = false
				inRun = false
				inText = false
			case "r":
				inRun = false
				inText = false
			case "t":
				inText = false
			}
		}
	}
	return out.String(), nil
}
