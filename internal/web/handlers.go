// Package web serves the HTML reader: works, tables of contents, annotated
// chapters, the glossary, term pages and search.
package web

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/reader"
)

// Handler holds the page handlers.
type Handler struct {
	svc  *reader.Service
	tmpl *template.Template
}

// NewHandler parses the page templates and creates a Handler.
func NewHandler(svc *reader.Service) (*Handler, error) {
	tmpl, err := parseTemplates(newMarkdown())
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Handler{svc: svc, tmpl: tmpl}, nil
}

// NewRouter creates a chi router with all reader pages mounted.
func NewRouter(svc *reader.Service) (chi.Router, error) {
	h, err := NewHandler(svc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(ReaderContext)

	r.Get("/", h.Home)
	r.Get("/works/{workID}", h.TableOfContents)
	r.Get("/read/{workID}/{chapter}", h.Chapter)
	r.Get("/terms", h.Glossary)
	r.Get("/terms/{termID}", h.Term)
	r.Get("/search", h.Search)
	r.Post("/theme", h.ToggleTheme)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.fail(w, r, apperr.ErrNotFound)
	})

	return r, nil
}

type homeData struct {
	Works []models.Work
}

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	works, err := h.svc.Works(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "home.html", "Works", homeData{Works: works})
}

// TableOfContents handles GET /works/{workID}. Visiting a work makes it the
// current work.
func (h *Handler) TableOfContents(w http.ResponseWriter, r *http.Request) {
	workID, err := pathInt(r, "workID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.svc.TableOfContents(r.Context(), workID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	r = h.selectWork(w, r, workID)
	title := "Contents"
	if view.Work != nil {
		title = view.Work.Title
	}
	h.render(w, r, http.StatusOK, "toc.html", title, view)
}

type chapterData struct {
	*reader.ChapterView
	Highlight string
}

// Chapter handles GET /read/{workID}/{chapter}. The optional highlight
// parameter names a passage to emphasise.
func (h *Handler) Chapter(w http.ResponseWriter, r *http.Request) {
	workID, err := pathInt(r, "workID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	chapter, err := pathInt(r, "chapter")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.svc.Chapter(r.Context(), workID, chapter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	r = h.selectWork(w, r, workID)
	h.render(w, r, http.StatusOK, "chapter.html", view.Title, chapterData{
		ChapterView: view,
		Highlight:   r.URL.Query().Get("highlight"),
	})
}

// Glossary handles GET /terms. q filters labels; work restricts the glossary
// to one work and defaults to the current work.
func (h *Handler) Glossary(w http.ResponseWriter, r *http.Request) {
	workID, err := h.workParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.svc.Glossary(r.Context(), workID, r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "glossary.html", "Glossary", view)
}

type termData struct {
	*reader.TermView
	Query url.Values
}

// Term handles GET /terms/{termID}.
func (h *Handler) Term(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pg, err := reader.ParsePage(q.Get("page"), q.Get("pageSize"), h.svc.DefaultPageSize())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.svc.Term(r.Context(), chi.URLParam(r, "termID"), pg)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "term.html", view.Term.Term, termData{TermView: view, Query: url.Values{}})
}

type searchData struct {
	Query   string
	Exact   bool
	Results *reader.SearchView
	Params  url.Values
}

// Search handles GET /search. An empty query shows the search form only.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := strings.TrimSpace(q.Get("q"))
	exact := q.Get("exact") == "true" || q.Get("exact") == "on"
	data := searchData{Query: text, Exact: exact}
	if text == "" {
		h.render(w, r, http.StatusOK, "search.html", "Search", data)
		return
	}

	pg, err := reader.ParsePage(q.Get("page"), q.Get("pageSize"), h.svc.DefaultPageSize())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	workID, err := h.workParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.svc.Search(r.Context(), reader.Query{Text: text, WorkID: workID, Exact: exact, Page: pg})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data.Results = view
	data.Params = url.Values{"q": {text}}
	if exact {
		data.Params.Set("exact", "true")
	}
	if workID > 0 {
		data.Params.Set("work", strconv.Itoa(workID))
	}
	h.render(w, r, http.StatusOK, "search.html", "Search: "+text, data)
}

// ToggleTheme handles POST /theme, flipping between the light and dark
// themes and returning to the page named by the return form field.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	c := FromContext(r.Context()).Toggled()
	setCookie(w, themeCookie, c.Theme)
	http.Redirect(w, r, localPath(r.FormValue("return")), http.StatusSeeOther)
}

// selectWork remembers workID as the current work and returns r carrying the
// updated reader context.
func (h *Handler) selectWork(w http.ResponseWriter, r *http.Request, workID int) *http.Request {
	c := FromContext(r.Context())
	if c.CurrentWorkID == workID {
		return r
	}
	setCookie(w, workCookie, strconv.Itoa(workID))
	return r.WithContext(withReaderContext(r.Context(), c.WithWork(workID)))
}

// workParam reads the work query parameter, falling back to the current work.
func (h *Handler) workParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("work")
	if raw == "" {
		return FromContext(r.Context()).CurrentWorkID, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: work %q", apperr.ErrInvalidInput, raw)
	}
	return id, nil
}

func pathInt(r *http.Request, key string) (int, error) {
	raw := chi.URLParam(r, key)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s %q", apperr.ErrInvalidInput, key, raw)
	}
	return n, nil
}

// localPath keeps redirects on this site.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
