package api

import (
	"github.com/starford/decisionlog/internal/docservice"
	"github.com/starford/decisionlog/internal/index"
)

// DocumentRow is a list item (aliased from the index layer).
type DocumentRow = index.DocumentRow

// DocumentDetail is the full document response type (aliased from the service layer).
type DocumentDetail = docservice.DocumentDetail

// ArtifactContent is a generated file response (aliased from the service layer).
type ArtifactContent = docservice.ArtifactContent

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []DocumentRow `json:"documents" validate:"required"`
	Total     int           `json:"total" example:"12" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// RegenerateResponse summarises a regeneration pass triggered over HTTP.
type RegenerateResponse struct {
	ADRs       int      `json:"adrs" example:"12" validate:"required"`
	Ideas      int      `json:"ideas" example:"4" validate:"required"`
	Artifacts  []string `json:"artifacts" example:"CHANGELOG.md,RELATIONS.md" validate:"required"`
	DurationMS int64    `json:"duration_ms" example:"35"`
}
