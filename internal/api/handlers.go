package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/decisionlog/internal/docservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List indexed documents
//	@Tags			documents
//	@Produce		json
//	@Param			kind	query		string	false	"Document kind"	Enums(adr, idea)
//	@Success		200		{object}	DocumentListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.ListDocuments(r.Context(), r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: len(docs)})
}

// GetDocument handles GET /api/documents/{kind}/{number}.
//
//	@Summary		Get a single document with content and backlinks
//	@Tags			documents
//	@Produce		json
//	@Param			kind	path		string	true	"Document kind"	Enums(adr, idea)
//	@Param			number	path		string	true	"Document number, leading zeros optional"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{kind}/{number} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.GetDocument(r.Context(), chi.URLParam(r, "kind"), chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across documents
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// GetArtifact handles GET /api/artifacts/{name}.
//
//	@Summary		Read a generated file
//	@Tags			artifacts
//	@Produce		json
//	@Param			name	path		string	true	"Artifact name"	Enums(changelog, relations, decisions-index, ideas-index)
//	@Success		200		{object}	ArtifactContent
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/artifacts/{name} [get]
func (h *Handler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Artifact(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, "get artifact", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Regenerate handles POST /api/regenerate.
//
//	@Summary		Run a regeneration pass
//	@Tags			artifacts
//	@Produce		json
//	@Success		200	{object}	RegenerateResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/regenerate [post]
func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Regenerate(r.Context())
	if err != nil {
		writeError(w, "regenerate", err)
		return
	}
	resp := RegenerateResponse{
		ADRs:       report.ADRs,
		Ideas:      report.Ideas,
		Artifacts:  make([]string, 0, len(report.Artifacts)),
		DurationMS: report.Duration.Milliseconds(),
	}
	for _, a := range report.Artifacts {
		resp.Artifacts = append(resp.Artifacts, a.Path)
	}
	writeJSON(w, http.StatusOK, resp)
}
