package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/starford/lectern/internal/annotate"
	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/reader"
)

//go:embed templates/*.html
var templatesFS embed.FS

// page is the data every template receives.
type page struct {
	Ctx   Context
	Title string
	Path  string
	Data  any
}

// pager is the data of the pagination partial.
type pager struct {
	Path   string
	Params url.Values
	P      reader.Pagination
}

// errorPage is the data of error.html.
type errorPage struct {
	Status  int
	Heading string
	Message string
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
}

func parseTemplates(md goldmark.Markdown) (*template.Template, error) {
	funcs := template.FuncMap{
		"segments":  renderSegments,
		"fragments": renderFragments,
		"markdown": func(src string) template.HTML {
			return renderMarkdown(md, src)
		},
		"deref": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
		"pager": func(path string, params url.Values, p reader.Pagination) pager {
			return pager{Path: path, Params: params, P: p}
		},
		"termURL": func(id string) string { return "/terms/" + url.PathEscape(id) },
		"pageURL": func(path string, q url.Values, page, size int) string {
			v := url.Values{}
			for k, vs := range q {
				v[k] = vs
			}
			v.Set("page", strconv.Itoa(page))
			v.Set("pageSize", strconv.Itoa(size))
			return path + "?" + v.Encode()
		},
	}
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}

// renderSegments renders annotated text. Plain text is escaped, footnote
// markers become superscripts and term links point at the term page.
func renderSegments(segs []annotate.Segment) template.HTML {
	var b strings.Builder
	for _, s := range segs {
		switch s.Kind {
		case annotate.KindFootnote:
			fmt.Fprintf(&b, `.<sup class="footnote">%d</sup>`, s.Footnote)
		case annotate.KindTerm:
			fmt.Fprintf(&b, `<a class="term" href="/terms/%s">%s</a>`,
				template.HTMLEscapeString(url.PathEscape(s.TermID)),
				template.HTMLEscapeString(s.Text))
		default:
			b.WriteString(template.HTMLEscapeString(s.Text))
		}
	}
	return template.HTML(b.String())
}

// renderFragments renders a highlighted snippet, wrapping matches in <mark>.
func renderFragments(frags []reader.Fragment) template.HTML {
	var b strings.Builder
	for _, f := range frags {
		if f.Mark {
			b.WriteString("<mark>")
			b.WriteString(template.HTMLEscapeString(f.Text))
			b.WriteString("</mark>")
			continue
		}
		b.WriteString(template.HTMLEscapeString(f.Text))
	}
	return template.HTML(b.String())
}

// renderMarkdown converts a term definition to HTML. Raw HTML in the source
// is dropped.
func renderMarkdown(md goldmark.Markdown, src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		slog.Warn("markdown conversion failed", slog.String("error", err.Error()))
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(buf.String())
}

// render executes the named template into a buffer first, so a failing
// template never leaves a half-written page behind.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	var buf bytes.Buffer
	p := page{Ctx: FromContext(r.Context()), Title: title, Path: r.URL.Path, Data: data}
	if err := h.tmpl.ExecuteTemplate(&buf, name, p); err != nil {
		slog.Error("template execution failed",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail renders the error page matching err.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		h.renderError(w, r, http.StatusNotFound, "Not found", "The page you asked for does not exist.")
	case errors.Is(err, apperr.ErrInvalidInput):
		h.renderError(w, r, http.StatusBadRequest, "Bad request", err.Error())
	default:
		slog.Error("page failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		h.renderError(w, r, http.StatusBadGateway, "Content unavailable",
			"The archive could not be reached. Please try again later.")
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, heading, msg string) {
	h.render(w, r, status, "error.html", heading, errorPage{Status: status, Heading: heading, Message: msg})
}
