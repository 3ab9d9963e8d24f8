package parser

import (
	"reflect"
	"testing"

	"github.com/starford/decisionlog/internal/models"
)

const adrDoc = `# ADR-0003: 이벤트 소싱 도입

**상태**: 수락됨
**날짜**: 2024-03-15
**관련 ADR**: [ADR-0001](0001-initial.md), [ADR-0002](0002-db.md)
**대체된 ADR**: [ADR-0002](0002-db.md)

## 배경
본문.
`

func mustADR(t *testing.T, data string) *models.ADR {
	t.Helper()
	doc, ok := Extract(models.KindADR, []byte(data))
	if !ok {
		t.Fatalf("Extract returned no document")
	}
	adr, ok := doc.(*models.ADR)
	if !ok {
		t.Fatalf("Extract returned %T, want *models.ADR", doc)
	}
	return adr
}

func TestExtract_ADRLabeledLines(t *testing.T) {
	adr := mustADR(t, adrDoc)
	if adr.Number != "0003" {
		t.Errorf("number = %q, want %q", adr.Number, "0003")
	}
	if adr.Title != "이벤트 소싱 도입" {
		t.Errorf("title = %q", adr.Title)
	}
	if adr.Status != "수락됨" {
		t.Errorf("status = %q", adr.Status)
	}
	if adr.Date != "2024-03-15" {
		t.Errorf("date = %q", adr.Date)
	}
	if want := []string{"0001", "0002"}; !reflect.DeepEqual(adr.Related, want) {
		t.Errorf("related = %v, want %v", adr.Related, want)
	}
	if adr.Supersedes != "2" {
		t.Errorf("supersedes = %q, want %q", adr.Supersedes, "2")
	}
}

func TestExtract_TitleTrimmed(t *testing.T) {
	adr := mustADR(t, "# ADR-12: Spaced title   \r\nbody\n")
	if adr.Number != "12" || adr.Title != "Spaced title" {
		t.Errorf("got number=%q title=%q", adr.Number, adr.Title)
	}
}

func TestExtract_FirstHeadingWins(t *testing.T) {
	adr := mustADR(t, "intro\n# ADR-1: First\n# ADR-2: Second\n")
	if adr.Number != "1" || adr.Title != "First" {
		t.Errorf("got number=%q title=%q", adr.Number, adr.Title)
	}
}

func TestExtract_NoHeading(t *testing.T) {
	cases := []string{
		"",
		"# Just a title\n",
		"## ADR-1: second level\n",
		" # ADR-1: indented\n",
		"# IDEA-1: wrong prefix\n",
	}
	for _, c := range cases {
		if _, ok := Extract(models.KindADR, []byte(c)); ok {
			t.Errorf("Extract(%q) should not produce a document", c)
		}
	}
}

func TestExtract_GeneratedChangelogIsNotADocument(t *testing.T) {
	changelog := "# 변경 이력 (Changelog)\n\n## 2024-01-01\n\n### ADR-1: x\n- **상태**: 수락됨\n"
	if _, ok := Extract(models.KindADR, []byte(changelog)); ok {
		t.Error("changelog should not be extracted as an ADR")
	}
	if _, ok := Extract(models.KindIdea, []byte(changelog)); ok {
		t.Error("changelog should not be extracted as an idea")
	}
}

func TestExtract_Defaults(t *testing.T) {
	adr := mustADR(t, "# ADR-5: Bare\n")
	if adr.Status != models.Unknown || adr.Date != models.Unknown {
		t.Errorf("status=%q date=%q, want defaults", adr.Status, adr.Date)
	}
	if len(adr.Related) != 0 || adr.Related == nil {
		t.Errorf("related = %#v, want empty non-nil", adr.Related)
	}
	if adr.Supersedes != "" {
		t.Errorf("supersedes = %q, want empty", adr.Supersedes)
	}
}

func TestExtract_MalformedDate(t *testing.T) {
	adr := mustADR(t, "# ADR-5: x\n**날짜**: 2024/03/15\n")
	if adr.Date != models.Unknown {
		t.Errorf("date = %q, want %q", adr.Date, models.Unknown)
	}
}

func TestExtract_RelatedDash(t *testing.T) {
	for _, v := range []string{"-", "  -  "} {
		adr := mustADR(t, "# ADR-5: x\n**관련 ADR**: "+v+"\n")
		if len(adr.Related) != 0 {
			t.Errorf("related for %q = %v, want empty", v, adr.Related)
		}
	}
}

func TestExtract_RelatedIgnoresOtherPrefix(t *testing.T) {
	adr := mustADR(t, "# ADR-5: x\n**관련 ADR**: IDEA-001, ADR-9\n")
	if want := []string{"9"}; !reflect.DeepEqual(adr.Related, want) {
		t.Errorf("related = %v, want %v", adr.Related, want)
	}
}

func TestExtract_SupersedesRequiresBrackets(t *testing.T) {
	adr := mustADR(t, "# ADR-5: x\n**대체된 ADR**: ADR-0002\n")
	if adr.Supersedes != "" {
		t.Errorf("supersedes = %q, want empty", adr.Supersedes)
	}
	adr = mustADR(t, "# ADR-5: x\n**대체된 ADR**: [ADR-0007]\n")
	if adr.Supersedes != "7" {
		t.Errorf("supersedes = %q, want %q", adr.Supersedes, "7")
	}
}

func TestExtract_Idea(t *testing.T) {
	data := "# IDEA-007: 검색 개선\n\n**상태**: 검토 중\n**제안일**: 2024-05-01\n**관련 아이디어**: IDEA-001, IDEA-003\n**대체된 ADR**: [ADR-0001]\n"
	doc, ok := Extract(models.KindIdea, []byte(data))
	if !ok {
		t.Fatal("Extract returned no document")
	}
	idea, ok := doc.(*models.Idea)
	if !ok {
		t.Fatalf("got %T, want *models.Idea", doc)
	}
	if idea.Number != "007" || idea.Title != "검색 개선" {
		t.Errorf("number=%q title=%q", idea.Number, idea.Title)
	}
	if idea.Status != "검토 중" || idea.Date != "2024-05-01" {
		t.Errorf("status=%q date=%q", idea.Status, idea.Date)
	}
	if want := []string{"001", "003"}; !reflect.DeepEqual(idea.Related, want) {
		t.Errorf("related = %v, want %v", idea.Related, want)
	}
}

func TestExtract_IdeaIgnoresADRDateLabel(t *testing.T) {
	doc, ok := Extract(models.KindIdea, []byte("# IDEA-1: x\n**날짜**: 2024-05-01\n"))
	if !ok {
		t.Fatal("Extract returned no document")
	}
	if got := doc.Meta().Date; got != models.Unknown {
		t.Errorf("date = %q, want %q", got, models.Unknown)
	}
}

func TestExtract_FrontmatterWinsOverLabels(t *testing.T) {
	data := `---
status: 폐기됨
date: 2023-12-01
related:
  - ADR-0004
  - ADR-0010
supersedes: "[ADR-0009]"
---
# ADR-0011: Front matter

**상태**: 수락됨
**날짜**: 2024-01-01
`
	adr := mustADR(t, data)
	if adr.Status != "폐기됨" {
		t.Errorf("status = %q", adr.Status)
	}
	if adr.Date != "2023-12-01" {
		t.Errorf("date = %q", adr.Date)
	}
	if want := []string{"0004", "0010"}; !reflect.DeepEqual(adr.Related, want) {
		t.Errorf("related = %v, want %v", adr.Related, want)
	}
	if adr.Supersedes != "9" {
		t.Errorf("supersedes = %q", adr.Supersedes)
	}
}

func TestExtract_FrontmatterPartialFallsBackToLabels(t *testing.T) {
	data := "---\nstatus: 제안됨\n---\n# ADR-2: x\n**날짜**: 2024-02-02\n**관련 ADR**: -\n"
	adr := mustADR(t, data)
	if adr.Status != "제안됨" || adr.Date != "2024-02-02" {
		t.Errorf("status=%q date=%q", adr.Status, adr.Date)
	}
	if len(adr.Related) != 0 {
		t.Errorf("related = %v", adr.Related)
	}
}

func TestExtract_InvalidFrontmatterFallsBack(t *testing.T) {
	data := "---\n: invalid: yaml: {{{\n---\n# ADR-2: x\n**상태**: 수락됨\n"
	adr := mustADR(t, data)
	if adr.Status != "수락됨" {
		t.Errorf("status = %q", adr.Status)
	}
}

func TestExtract_DecomposedHangulLabels(t *testing.T) {
	// "상태" in NFD form.
	nfd := "\u1109\u1161\u11bc\u1110\u1162"
	adr := mustADR(t, "# ADR-1: x\n**"+nfd+"**: 수락됨\n")
	if adr.Status != "수락됨" {
		t.Errorf("status = %q, want %q", adr.Status, "수락됨")
	}
}

func TestExtract_TitleKeepsFileBytes(t *testing.T) {
	// "결정 기록" in NFD form.
	title := "\u1100\u1167\u11af\u110c\u1165\u11bc \u1100\u1175\u1105\u1169\u11a8"
	adr := mustADR(t, "# ADR-0001: "+title+"\n**상태**: 수락됨\n")
	if adr.Title != title {
		t.Errorf("title = %q (%d bytes), want %q (%d bytes)", adr.Title, len(adr.Title), title, len(title))
	}
	if adr.Status != "수락됨" {
		t.Errorf("status = %q", adr.Status)
	}
}

func TestExtract_DecomposedValueKeepsFileBytes(t *testing.T) {
	// "검토 중" in NFD form under an NFC label.
	status := "\u1100\u1165\u11b7\u1110\u1169 \u110c\u116e\u11bc"
	adr := mustADR(t, "# ADR-2: x\n**상태**: "+status+"\n")
	if adr.Status != status {
		t.Errorf("status = %q, want %q", adr.Status, status)
	}
}

func TestExtract_UnicodeSpaceAfterLabel(t *testing.T) {
	adr := mustADR(t, "# ADR-3: x\n**날짜**:\u00a02024-01-01\n**대체된 ADR**:\u3000[ADR-0002]\n")
	if adr.Date != "2024-01-01" {
		t.Errorf("date = %q, want 2024-01-01", adr.Date)
	}
	if adr.Supersedes != "2" {
		t.Errorf("supersedes = %q, want 2", adr.Supersedes)
	}
}

func TestTrimZeros(t *testing.T) {
	cases := map[string]string{"0007": "7", "7": "7", "0000": "0", "0100": "100", "": ""}
	for in, want := range cases {
		if got := TrimZeros(in); got != want {
			t.Errorf("TrimZeros(%q) = %q, want %q", in, got, want)
		}
	}
}
