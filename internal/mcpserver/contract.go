package mcpserver

// DocumentFormat describes the Markdown layout the generator recognises.
// LLM consumers should read it before drafting a new ADR or idea.
const DocumentFormat = `# Decision Log Document Format

Two kinds of documents live in the knowledge base:

- **ADRs** in ` + "`decisions/`" + `, file names like ` + "`0007-use-sqlite.md`" + `.
- **Ideas** in ` + "`ideas/`" + `, file names like ` + "`003-graph-view.md`" + `.

` + "`README.md`" + ` and files starting with ` + "`_`" + ` (templates) are never treated as documents.
Only files directly inside the directory are read.

## ADR

` + "```" + `markdown
# ADR-0007: SQLite로 전환

**상태**: 수락됨
**날짜**: 2024-02-01
**관련 ADR**: [ADR-0001](0001-monorepo.md), ADR-0003
**대체된 ADR**: [ADR-0002](0002-postgres.md)
` + "```" + `

## Idea

` + "```" + `markdown
# IDEA-003: 그래프 뷰

**상태**: 검토 중
**제안일**: 2024-02-10
**관련 아이디어**: IDEA-001
` + "```" + `

## Rules

1. The first line matching ` + "`# ADR-<digits>: <title>`" + ` (or ` + "`# IDEA-<digits>: <title>`" + `) makes
   the file a document. Without it the file is ignored.
2. Labels are bold and followed by a colon: ` + "`**상태**: ...`" + `. Missing labels render as
   ` + "`알 수 없음`" + `.
3. Dates start with ` + "`YYYY-MM-DD`" + `.
4. Related lists contain ` + "`ADR-n`" + ` / ` + "`IDEA-n`" + ` references, with or without links. A single
   ` + "`-`" + ` means none.
5. Supersession must be written as a bracketed link ` + "`[ADR-n]`" + `.
6. YAML front matter with ` + "`status`" + `, ` + "`date`" + `, ` + "`related`" + ` and ` + "`supersedes`" + ` keys is also
   accepted and takes precedence over labeled lines.
7. Never edit generated files (` + "`CHANGELOG.md`" + `, ` + "`RELATIONS.md`" + `, or the region between the
   AUTO-GENERATED markers in each README). Call the ` + "`regenerate`" + ` tool instead.
`
