package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/starford/decisionlog/internal/models"
)

// TimestampPrefix starts the only line of the changelog that changes between
// runs over the same documents.
const TimestampPrefix = "> 마지막 업데이트: "

// Changelog renders CHANGELOG.md. Documents are grouped by date string,
// groups in descending string order; inside a group ADRs come first, then
// ideas, each in collection order.
func Changelog(adrs, ideas []models.Document, now time.Time) string {
	lines := []string{
		"# 변경 이력 (Changelog)",
		"",
		"> 이 파일은 자동 생성됩니다. 직접 수정하지 마세요.",
		TimestampPrefix + now.Format("2006-01-02 15:04"),
		"",
		"---",
		"",
	}

	all := make([]models.Document, 0, len(adrs)+len(ideas))
	all = append(all, adrs...)
	all = append(all, ideas...)

	byDate := make(map[string][]models.Document)
	var dates []string
	for _, d := range all {
		date := d.Meta().Date
		if _, ok := byDate[date]; !ok {
			dates = append(dates, date)
		}
		byDate[date] = append(byDate[date], d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	for _, date := range dates {
		lines = append(lines, "## "+date, "")
		for _, d := range byDate[date] {
			h := d.Meta()
			lines = append(lines,
				fmt.Sprintf("### %s: %s", h.ID(d.Kind()), h.Title),
				"- **상태**: "+h.Status,
			)
			if adr, ok := d.(*models.ADR); ok && adr.Supersedes != "" {
				lines = append(lines, fmt.Sprintf("- **대체**: ADR-%s를 대체함", adr.Supersedes))
			}
			lines = append(lines, "")
		}
		lines = append(lines, "---", "")
	}

	return strings.Join(lines, "\n")
}

// StripTimestamp blanks the generation timestamp so two changelogs can be
// compared for content.
func StripTimestamp(changelog string) string {
	lines := strings.Split(changelog, "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, TimestampPrefix) {
			lines[i] = TimestampPrefix
		}
	}
	return strings.Join(lines, "\n")
}
