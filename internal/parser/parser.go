// Package parser extracts document metadata from ADR and idea Markdown files.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/starford/decisionlog/internal/models"
)

// Field names used by the labeled header lines, e.g. "**상태**: 수락됨".
const (
	LabelStatus        = "상태"
	LabelDate          = "날짜"
	LabelProposed      = "제안일"
	LabelRelatedADR    = "관련 ADR"
	LabelRelatedIdea   = "관련 아이디어"
	LabelSupersededADR = "대체된 ADR"
)

// rules holds the compiled patterns for one document kind.
type rules struct {
	heading   *regexp.Regexp
	reference *regexp.Regexp
	status    *regexp.Regexp
	date      *regexp.Regexp
	related   *regexp.Regexp

	dateKeys    []string
	relatedKeys []string
}

var (
	datePrefixRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)
	supersedeRe  = labelRe(LabelSupersededADR, `\[ADR-(\d+)\]`)
	bracketRefRe = regexp.MustCompile(`^\[ADR-(\d+)\]`)

	kindRules = map[models.Kind]*rules{
		models.KindADR:  newRules("ADR", LabelDate, LabelRelatedADR),
		models.KindIdea: newRules("IDEA", LabelProposed, LabelRelatedIdea),
	}
)

func newRules(prefix, dateLabel, relatedLabel string) *rules {
	return &rules{
		heading:     regexp.MustCompile(`(?m)^# ` + prefix + `-(\d+): (.+)$`),
		reference:   regexp.MustCompile(prefix + `-(\d+)`),
		status:      labelRe(LabelStatus, `(.+?)(?:\n|$)`),
		date:        labelRe(dateLabel, `(\d{4}-\d{2}-\d{2})`),
		related:     labelRe(relatedLabel, `(.+?)(?:\n|$)`),
		dateKeys:    []string{"date", dateLabel},
		relatedKeys: []string{"related", relatedLabel},
	}
}

// labelRe matches "**label**:" followed by value. Go's \s is ASCII only, so
// Unicode space separators (e.g. NBSP) are accepted explicitly.
func labelRe(label, value string) *regexp.Regexp {
	return regexp.MustCompile(`\*\*` + regexp.QuoteMeta(label) + `\*\*:[\s\p{Zs}]*` + value)
}

// Extract parses raw document text of the given kind. The boolean is false
// when the text carries no "# ADR-n: title" / "# IDEA-n: title" heading, in
// which case the file is not a document and must be skipped.
//
// Captured values keep the bytes of the file. The NFC form of the text is
// consulted only when a pattern finds nothing in the raw text, so labels
// typed in decomposed Hangul are still recognised.
func Extract(kind models.Kind, data []byte) (models.Document, bool) {
	r, ok := kindRules[kind]
	if !ok {
		return nil, false
	}
	src := newSource(data)

	m := src.submatch(r.heading)
	if m == nil {
		return nil, false
	}

	fm := src.frontmatter()
	h := models.Header{
		Number:  m[1],
		Title:   strings.TrimSpace(m[2]),
		Status:  models.Unknown,
		Date:    models.Unknown,
		Related: []string{},
	}
	if h.Title == "" {
		return nil, false
	}

	if v, ok := lookup(fm, "status", LabelStatus); ok {
		if v = strings.TrimSpace(v); v != "" {
			h.Status = v
		}
	} else if sm := src.submatch(r.status); sm != nil {
		h.Status = strings.TrimSpace(sm[1])
	}

	if v, ok := lookup(fm, r.dateKeys...); ok {
		if dm := datePrefixRe.FindStringSubmatch(strings.TrimSpace(v)); dm != nil {
			h.Date = dm[1]
		}
	} else if dm := src.submatch(r.date); dm != nil {
		h.Date = dm[1]
	}

	if v, ok := lookup(fm, r.relatedKeys...); ok {
		h.Related = parseRelated(r.reference, v)
	} else if rm := src.submatch(r.related); rm != nil {
		h.Related = parseRelated(r.reference, rm[1])
	}

	if kind == models.KindIdea {
		return &models.Idea{Header: h}, true
	}

	adr := &models.ADR{Header: h}
	if v, ok := lookup(fm, "supersedes", LabelSupersededADR); ok {
		if sm := bracketRefRe.FindStringSubmatch(strings.TrimSpace(v)); sm != nil {
			adr.Supersedes = TrimZeros(sm[1])
		}
	} else if sm := src.submatch(supersedeRe); sm != nil {
		adr.Supersedes = TrimZeros(sm[1])
	}
	return adr, true
}

// source pairs the file text with its NFC form. nfc is empty when the text
// is already normalised.
type source struct {
	raw string
	nfc string
}

func newSource(data []byte) source {
	s := source{raw: string(data)}
	if !norm.NFC.IsNormalString(s.raw) {
		s.nfc = norm.NFC.String(s.raw)
	}
	return s
}

// submatch matches re against the raw text, then against the NFC form.
func (s source) submatch(re *regexp.Regexp) []string {
	if m := re.FindStringSubmatch(s.raw); m != nil {
		return m
	}
	if s.nfc == "" {
		return nil
	}
	return re.FindStringSubmatch(s.nfc)
}

// frontmatter parses the raw front matter. Keys present only in NFC form
// (decomposed Hangul keys) are added from the normalised text.
func (s source) frontmatter() map[string]interface{} {
	fm := frontmatter(s.raw)
	if s.nfc == "" {
		return fm
	}
	for k, v := range frontmatter(s.nfc) {
		if fm == nil {
			fm = map[string]interface{}{}
		}
		if _, ok := fm[k]; !ok {
			fm[k] = v
		}
	}
	return fm
}

// parseRelated turns a related-documents value into numbers. A bare "-"
// means "none" and is handled before the reference scan.
func parseRelated(ref *regexp.Regexp, value string) []string {
	out := []string{}
	if strings.TrimSpace(value) == "-" {
		return out
	}
	for _, m := range ref.FindAllStringSubmatch(value, -1) {
		out = append(out, m[1])
	}
	return out
}

// TrimZeros strips leading zeros from a digit string, keeping at least one
// digit ("0007" → "7", "0000" → "0").
func TrimZeros(number string) string {
	t := strings.TrimLeft(number, "0")
	if t == "" && number != "" {
		return "0"
	}
	return t
}

// lookup returns the first present key of fm, stringified.
func lookup(fm map[string]interface{}, keys ...string) (string, bool) {
	if fm == nil {
		return "", false
	}
	for _, k := range keys {
		raw, ok := fm[k]
		if !ok || raw == nil {
			continue
		}
		return stringify(raw), true
	}
	return "", false
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format("2006-01-02")
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// frontmatter parses a leading YAML block delimited by "---" lines. Missing
// or invalid front matter yields nil so label scanning takes over.
func frontmatter(content string) map[string]interface{} {
	const delim = "---"
	data := []byte(content)
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return nil
	}
	return fm
}
