package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// PPTX slides live at ppt/slides/slide<N>.xml inside the archive. The prefix
// match deliberately excludes slide layouts and masters, which live under
// ppt/slideLayouts and ppt/slideMasters.
const (
	slidePathPrefix = "ppt/slides/slide"
	slidePathSuffix = ".xml"
)

// slideUnit is one slide member of the archive with the ordinal recovered
// from its filename.
type slideUnit struct {
	file    *zip.File
	ordinal int
}

// slideOrdinal parses the number between the slide path prefix and suffix.
// Malformed names fall back to ordinal 0: one bad filename must not abort
// the extraction, at the cost of best-effort order for that slide.
func slideOrdinal(name string) int {
	n := strings.TrimSuffix(strings.TrimPrefix(name, slidePathPrefix), slidePathSuffix)
	ordinal, err := strconv.Atoi(n)
	if err != nil {
		return 0
	}
	return ordinal
}

// extractPPTX extracts text from .pptx bytes. The archive's slide members
// are sorted by their numeric ordinal so slide10 follows slide2 instead of
// preceding it, then each slide's XML is scanned for text nodes. Non-empty
// slides are emitted with a "--- SLIDE <name> ---" marker line; slides with
// no text are omitted. A deck that yields no text at all is reported as a
// no-text failure, which usually indicates an image-only presentation.
func extractPPTX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", failf(ReasonMalformedContainer, "failed to read pptx as zip: %v", err)
	}

	var slides []slideUnit
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, slidePathPrefix) && strings.HasSuffix(f.Name, slidePathSuffix) {
			slides = append(slides, slideUnit{file: f, ordinal: slideOrdinal(f.Name)})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].ordinal < slides[j].ordinal })

	var out bytes.Buffer
	for _, slide := range slides {
		rc, err := slide.file.Open()
		if err != nil {
			return "", failf(ReasonMalformedContainer, "failed to read slide %s: %v", slide.file.Name, err)
		}
		slideText := scanSlideText(rc)
		_ = rc.Close()

		if strings.TrimSpace(slideText) == "" {
			continue
		}
		fmt.Fprintf(&out, "--- SLIDE %s ---\n", slide.file.Name)
		out.WriteString(slideText)
		out.WriteByte('\n')
	}

	if out.Len() == 0 {
		return "", failf(ReasonNoText, "no text found in presentation slides")
	}
	return out.String(), nil
}

// scanSlideText scans one slide's markup events and accumulates every
// text node followed by a single space. A parse error mid-stream abandons
// the rest of that slide only; whatever was accumulated is kept.
func scanSlideText(r io.Reader) string {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			// EOF or malformed markup: keep what we have.
			return b.String()
		}
		if cd, ok := tok.(xml.CharData); ok {
			text := strings.TrimSpace(string(cd))
			if text != "" {
				b.WriteString(text)
				b.WriteByte(' ')
			}
		}
	}
}
