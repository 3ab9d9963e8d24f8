// Package render turns document collections into the generated Markdown
// artifacts: index tables, the changelog and the relation graph.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/decisionlog/internal/models"
)

const (
	adrTableHeader  = "| 번호 | 제목 | 상태 | 날짜 | 관련 ADR |"
	adrTableRule    = "|------|------|------|------|----------|"
	ideaTableHeader = "| 번호 | 제목 | 상태 | 제안일 | ADR 링크 |"
	ideaTableRule   = "|------|------|------|--------|----------|"
)

// Table renders the index table for one category. Rows are ordered by the
// number as a string, so "10" sorts before "2".
func Table(kind models.Kind, docs []models.Document) string {
	rows := make([]models.Header, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, d.Meta())
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Number < rows[j].Number
	})

	var lines []string
	switch kind {
	case models.KindIdea:
		lines = append(lines, ideaTableHeader, ideaTableRule)
		for _, h := range rows {
			lines = append(lines, fmt.Sprintf("| [%s](%s) | %s | %s | %s | - |",
				h.ID(kind), h.Filename, h.Title, h.Status, h.Date))
		}
	default:
		lines = append(lines, adrTableHeader, adrTableRule)
		for _, h := range rows {
			lines = append(lines, fmt.Sprintf("| [%s](%s) | %s | %s | %s | %s |",
				h.ID(kind), h.Filename, h.Title, h.Status, h.Date, relatedLinks(h.Related)))
		}
	}
	return strings.Join(lines, "\n")
}

// relatedLinks links each related ADR to a guessed "NNNN-*.md" file name.
// The target is not checked.
func relatedLinks(related []string) string {
	if len(related) == 0 {
		return "-"
	}
	links := make([]string, 0, len(related))
	for _, n := range related {
		links = append(links, fmt.Sprintf("[ADR-%s](%s-*.md)", n, zeroPad(n, 4)))
	}
	return strings.Join(links, ", ")
}

func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
