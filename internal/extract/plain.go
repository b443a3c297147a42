package extract

import "unicode/utf8"

// extractPlain returns content verbatim, validating it is UTF-8 text.
// No transformation is applied; output equals input for valid files.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", failf(ReasonIO, "failed to read file: content is not valid UTF-8 text")
	}
	return string(content), nil
}
