package render

import (
	"strings"

	"github.com/starford/decisionlog/internal/apperr"
)

// Markers delimiting the region of an index document owned by the generator.
const (
	StartMarker = "<!-- AUTO-GENERATED-START -->"
	EndMarker   = "<!-- AUTO-GENERATED-END -->"
)

// Splice replaces everything between each start/end marker pair with table.
// The markers and all text outside the regions are kept byte for byte.
// It returns apperr.ErrMarkersNotFound when no complete pair exists.
func Splice(text, table string) (string, error) {
	var b strings.Builder
	rest := text
	found := false
	for {
		start := strings.Index(rest, StartMarker)
		if start < 0 {
			break
		}
		afterStart := start + len(StartMarker)
		end := strings.Index(rest[afterStart:], EndMarker)
		if end < 0 {
			break
		}
		found = true
		b.WriteString(rest[:afterStart])
		b.WriteString("\n")
		b.WriteString(table)
		b.WriteString("\n")
		b.WriteString(EndMarker)
		rest = rest[afterStart+end+len(EndMarker):]
	}
	if !found {
		return "", apperr.ErrMarkersNotFound
	}
	b.WriteString(rest)
	return b.String(), nil
}
