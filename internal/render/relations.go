package render

import (
	"fmt"
	"strings"

	"github.com/starford/decisionlog/internal/models"
	"github.com/starford/decisionlog/internal/parser"
)

// Status classes used to colour graph nodes.
const (
	ClassAccepted   = "accepted"
	ClassDeprecated = "deprecated"
	ClassProposed   = "proposed"
)

// StatusClass buckets a free-text status by keyword: "수락" (accepted),
// "폐기" (deprecated), anything else proposed.
func StatusClass(status string) string {
	switch {
	case strings.Contains(status, "수락"):
		return ClassAccepted
	case strings.Contains(status, "폐기"):
		return ClassDeprecated
	default:
		return ClassProposed
	}
}

// NodeID returns the Mermaid node id for an ADR number. Leading zeros are
// dropped so "0007" and "7" name the same node.
func NodeID(number string) string {
	return "ADR" + parser.TrimZeros(number)
}

// Relations renders RELATIONS.md: a Mermaid graph with one node per ADR,
// solid edges to related ADRs and dashed edges to superseded ones. Edge
// targets are not checked against the declared nodes.
func Relations(adrs []*models.ADR) string {
	lines := []string{
		"# ADR 관계도",
		"",
		"> ADR 간의 관계를 시각화합니다.",
		"",
		"```mermaid",
		"graph TD",
	}

	for _, a := range adrs {
		id := NodeID(a.Number)
		lines = append(lines, fmt.Sprintf("    %s[ADR-%s: %s]:::%s", id, a.Number, a.Title, StatusClass(a.Status)))
		for _, r := range a.Related {
			lines = append(lines, fmt.Sprintf("    %s --> %s", id, NodeID(r)))
		}
		if a.Supersedes != "" {
			lines = append(lines, fmt.Sprintf("    %s -.->|대체| %s", id, NodeID(a.Supersedes)))
		}
	}

	lines = append(lines,
		"",
		"    classDef accepted fill:#10b981,color:white",
		"    classDef deprecated fill:#ef4444,color:white",
		"    classDef proposed fill:#f59e0b,color:white",
		"```",
		"",
		"## 범례",
		"",
		"- 실선 화살표: 관련 ADR",
		"- 점선 화살표: 대체 관계",
	)
	return strings.Join(lines, "\n")
}
