package extract

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// extractPDF delegates to the text-layer extraction of the pdf library.
// PDF has no reliable paragraph model, so no structural markers are added.
// Scanned (image-only) PDFs legitimately yield empty output; that is not
// an error here.
func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", failf(ReasonMalformedContainer, "failed to extract pdf text: %v", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", failf(ReasonMalformedContainer, "failed to extract pdf text: page %d: %v", i, err)
		}
		buf.WriteString(text)
		if i < numPages {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}
