package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectern/internal/annotate"
	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/reader"
)

// Handler holds API route handlers.
type Handler struct {
	svc *reader.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *reader.Service) *Handler {
	return &Handler{svc: svc}
}

// ListWorks handles GET /api/works.
//
//	@Summary		List the works of the archive
//	@Tags			works
//	@Produce		json
//	@Success		200	{object}	WorksResponse
//	@Failure		502	{object}	errResponse
//	@Router			/works [get]
func (h *Handler) ListWorks(w http.ResponseWriter, r *http.Request) {
	works, err := h.svc.Works(r.Context())
	if err != nil {
		writeError(w, "list works", err)
		return
	}
	writeJSON(w, http.StatusOK, WorksResponse{Works: works})
}

// TableOfContents handles GET /api/works/{workID}/toc.
//
//	@Summary		Chapters of a work grouped by part
//	@Tags			works
//	@Produce		json
//	@Param			workID	path		int	true	"Work id"
//	@Success		200		{object}	TOCResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/works/{workID}/toc [get]
func (h *Handler) TableOfContents(w http.ResponseWriter, r *http.Request) {
	workID, ok := pathInt(w, r, "workID")
	if !ok {
		return
	}
	view, err := h.svc.TableOfContents(r.Context(), workID)
	if err != nil {
		writeError(w, "table of contents", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetChapter handles GET /api/chapters/{workID}/{chapter}.
//
//	@Summary		Annotated chapter grouped into sections
//	@Tags			chapters
//	@Produce		json
//	@Param			workID	path		int	true	"Work id"
//	@Param			chapter	path		int	true	"Chapter number"
//	@Success		200		{object}	ChapterResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Router			/chapters/{workID}/{chapter} [get]
func (h *Handler) GetChapter(w http.ResponseWriter, r *http.Request) {
	workID, ok := pathInt(w, r, "workID")
	if !ok {
		return
	}
	chapter, ok := pathInt(w, r, "chapter")
	if !ok {
		return
	}
	view, err := h.svc.Chapter(r.Context(), workID, chapter)
	if err != nil {
		writeError(w, "get chapter", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Annotate handles POST /api/annotate.
//
//	@Summary		Annotate text with footnote markers and term links
//	@Tags			annotate
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AnnotateRequest	true	"Text and terms"
//	@Success		200		{object}	AnnotateResponse
//	@Failure		400		{object}	errResponse
//	@Router			/annotate [post]
func (h *Handler) Annotate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxAnnotateText)
	var req AnnotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	segs := annotate.Annotate(req.Text, req.Terms)
	if segs == nil {
		segs = []annotate.Segment{}
	}
	writeJSON(w, http.StatusOK, AnnotateResponse{Segments: segs})
}

// ListTerms handles GET /api/terms.
//
//	@Summary		List glossary terms
//	@Tags			terms
//	@Produce		json
//	@Param			q		query		string	false	"Case-insensitive label filter"
//	@Param			work	query		int		false	"Restrict to one work"
//	@Success		200		{object}	GlossaryResponse
//	@Failure		400		{object}	errResponse
//	@Router			/terms [get]
func (h *Handler) ListTerms(w http.ResponseWriter, r *http.Request) {
	workID, ok := queryInt(w, r, "work")
	if !ok {
		return
	}
	view, err := h.svc.Glossary(r.Context(), workID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, "list terms", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetTerm handles GET /api/terms/{termID}.
//
//	@Summary		A term with one page of the passages that mention it
//	@Tags			terms
//	@Produce		json
//	@Param			termID		path		string	true	"Term id"
//	@Param			page		query		int		false	"Page number"
//	@Param			pageSize	query		int		false	"Page size"	Enums(5, 10, 20, 50)
//	@Success		200			{object}	TermResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Router			/terms/{termID} [get]
func (h *Handler) GetTerm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pg, err := reader.ParsePage(q.Get("page"), q.Get("pageSize"), h.svc.DefaultPageSize())
	if err != nil {
		writeError(w, "get term", err)
		return
	}
	termID := chi.URLParam(r, "termID")
	view, err := h.svc.Term(r.Context(), termID, pg)
	if err != nil {
		writeError(w, "get term", err, slog.String("term", termID))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search over passages and terms
//	@Tags			search
//	@Produce		json
//	@Param			q			query		string	true	"Search query, at least 2 characters"
//	@Param			exact		query		bool	false	"Exact phrase"
//	@Param			work		query		int		false	"Restrict to one work"
//	@Param			page		query		int		false	"Page number"
//	@Param			pageSize	query		int		false	"Page size"	Enums(5, 10, 20, 50)
//	@Success		200			{object}	SearchResponse
//	@Failure		400			{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := strings.TrimSpace(q.Get("q"))
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	workID, ok := queryInt(w, r, "work")
	if !ok {
		return
	}
	pg, err := reader.ParsePage(q.Get("page"), q.Get("pageSize"), h.svc.DefaultPageSize())
	if err != nil {
		writeError(w, "search", err)
		return
	}
	exact, _ := strconv.ParseBool(q.Get("exact"))

	view, err := h.svc.Search(r.Context(), reader.Query{Text: text, WorkID: workID, Exact: exact, Page: pg})
	if err != nil {
		writeError(w, "search", err, slog.String("query", text))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// writeError maps service errors onto status codes. Upstream failures are
// logged; their details stay out of the response.
func writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusBadGateway, errorBody("content unavailable"))
	}
}

func pathInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil || n < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody(key+" must be a positive integer"))
		return 0, false
	}
	return n, true
}

func queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody(key+" must be a non-negative integer"))
		return 0, false
	}
	return n, true
}
