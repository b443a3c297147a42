package extract

import (
	"errors"
	"fmt"
)

// Reason classifies an extraction failure.
type Reason int

const (
	// ReasonIO means the file could not be read or decoded at the byte level.
	ReasonIO Reason = iota
	// ReasonUnsupportedFormat means the extension is not recognized, or is a
	// legacy format we refuse to parse.
	ReasonUnsupportedFormat
	// ReasonMalformedContainer means the ZIP/DOCX/PDF structure could not be
	// opened or parsed at the top level.
	ReasonMalformedContainer
	// ReasonNoText means parsing succeeded but yielded no text at all.
	ReasonNoText
)

// Error is a classified extraction failure. Detail is a standalone
// human-readable message; it is shown to users without further wrapping.
type Error struct {
	Reason Reason
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func failf(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf returns the failure reason of err if it is an extraction Error.
func ReasonOf(err error) (Reason, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return 0, false
}
