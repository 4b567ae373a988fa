// Package testutil provides a fake archive API for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectern/internal/models"
)

func intp(v int) *int { return &v }

// Works is the fixture catalogue.
var Works = []models.Work{
	{ID: 1, Title: "Capital, Volume I", Author: "Karl Marx", Year: "1867", Description: "A critique of political economy."},
	{ID: 2, Title: "Grundrisse", Author: "Karl Marx", Year: "1858"},
}

// Chapters are the chapters of work 1.
var Chapters = []models.Chapter{
	{ID: 1, ChapterNumber: 1, Title: "Commodities", WorkID: 1},
	{ID: 2, ChapterNumber: 2, Title: "Exchange", WorkID: 1},
	{ID: 3, ChapterNumber: 3, Title: "Money, or the Circulation of Commodities", WorkID: 1},
}

// Terms is the fixture glossary.
var Terms = []models.Term{
	{ID: "commodity", Term: "commodity", Aliases: "commodities", Definition: "A **product** of labour made for exchange.", WorkID: 1},
	{ID: "use-value", Term: "use value", Aliases: "use-value", Definition: "The usefulness of a thing.", WorkID: 1},
	{ID: "exchange-value", Term: "exchange value", Aliases: "exchange-value", Definition: "The proportion in which use values exchange.", WorkID: 1},
	{ID: "surplus-value", Term: "Surplus Value", Aliases: "surplus-value, SV", Definition: "Value produced beyond the value of labour power.", WorkID: 1},
	{ID: "value", Term: "value", Definition: "Socially necessary labour time <i>congealed</i> in a commodity.", WorkID: 1},
}

var partOne = &models.Part{Number: 1, Title: "Commodities and Money"}

// ChapterData holds chapter payloads keyed by chapter number.
var ChapterData = map[int]models.ChapterData{
	1: {
		Title: "Commodities",
		Part:  partOne,
		Next:  &Chapters[1],
		Sections: []models.Section{
			{Section: 1, Title: "The Two Factors of a Commodity"},
			{Section: 2, Title: "The Twofold Character of the Labour"},
		},
		Passages: []models.Passage{
			{ID: "1-1-1-1", WorkID: 1, Chapter: 1, Section: intp(1), Paragraph: intp(1),
				Text: "The wealth of those societies appears as an immense accumulation of commodities.1 Our investigation must therefore begin with the analysis of a commodity."},
			{ID: "1-1-1-2", WorkID: 1, Chapter: 1, Section: intp(1), Paragraph: intp(2),
				Text: "The use value of a thing is not its exchange value."},
			{ID: "1-1-2-1", WorkID: 1, Chapter: 1, Section: intp(2), Paragraph: intp(3),
				Text: "Surplus value arises from labour <power>.2"},
		},
		Terms: Terms,
	},
	2: {
		Title: "Exchange",
		Part:  partOne,
		Prev:  &Chapters[0],
		Next:  &Chapters[2],
		Passages: []models.Passage{
			{ID: "1-2-0-1", WorkID: 1, Chapter: 2, Paragraph: intp(1),
				Text: "It is plain that commodities cannot go to market and make exchanges of their own account."},
			{ID: "1-2-0-2", WorkID: 1, Chapter: 2, Section: intp(-1), Paragraph: intp(2),
				Text: "Their guardians must therefore enter into relations with each other."},
		},
		Terms: Terms,
	},
}

// TOC is the table of contents of work 1.
var TOC = []models.ChapterTOC{
	{ID: 1, ChapterNumber: 1, Title: "Commodities", Part: partOne, Sections: []models.Section{
		{Section: 1, Title: "The Two Factors of a Commodity"},
		{Section: 2, Title: "The Twofold Character of the Labour"},
	}},
	{ID: 2, ChapterNumber: 2, Title: "Exchange", Part: partOne, Sections: []models.Section{}},
	{ID: 3, ChapterNumber: 3, Title: "Money, or the Circulation of Commodities", Part: &models.Part{Number: 2, Title: "The Transformation of Money into Capital"}, Sections: []models.Section{}},
}

// Archive is a running fake archive API.
type Archive struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

// Requests returns the request URIs the server received, in arrival order.
func (a *Archive) Requests() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.requests)
}

// Seen reports whether the server received a request for uri.
func (a *Archive) Seen(uri string) bool {
	return slices.Contains(a.Requests(), uri)
}

// NewArchive starts a fake archive API serving the fixtures. It is closed
// when the test ends.
func NewArchive(t *testing.T) *Archive {
	t.Helper()
	a := &Archive{}
	a.Server = httptest.NewServer(a.router())
	t.Cleanup(a.Close)
	return a
}

// NewFailingArchive starts an archive API that answers every request with
// 500 Internal Server Error.
func NewFailingArchive(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "database is down"})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (a *Archive) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			a.mu.Lock()
			a.requests = append(a.requests, req.URL.RequestURI())
			a.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/works/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Works)
	})
	r.Get("/works/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(req, "id"))
		for _, wk := range Works {
			if wk.ID == id {
				writeJSON(w, http.StatusOK, wk)
				return
			}
		}
		notFound(w, "Work not found")
	})
	r.Get("/chapters/", func(w http.ResponseWriter, req *http.Request) {
		if workID(req) == 2 {
			writeJSON(w, http.StatusOK, []models.Chapter{})
			return
		}
		writeJSON(w, http.StatusOK, Chapters)
	})
	r.Get("/chapter_data/{chapter}", func(w http.ResponseWriter, req *http.Request) {
		n, _ := strconv.Atoi(chi.URLParam(req, "chapter"))
		data, ok := ChapterData[n]
		if !ok || workID(req) > 1 {
			notFound(w, "Chapter not found")
			return
		}
		writeJSON(w, http.StatusOK, data)
	})
	r.Get("/chapters_with_sections", func(w http.ResponseWriter, req *http.Request) {
		if workID(req) > 1 {
			writeJSON(w, http.StatusOK, []models.ChapterTOC{})
			return
		}
		writeJSON(w, http.StatusOK, TOC)
	})
	r.Get("/terms/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Terms)
	})
	r.Get("/terms/{id}", func(w http.ResponseWriter, req *http.Request) {
		if t, ok := findTerm(chi.URLParam(req, "id")); ok {
			writeJSON(w, http.StatusOK, t)
			return
		}
		notFound(w, "Term not found")
	})
	r.Get("/terms/{id}/passages", func(w http.ResponseWriter, req *http.Request) {
		t, ok := findTerm(chi.URLParam(req, "id"))
		if !ok {
			writeJSON(w, http.StatusOK, []models.Passage{})
			return
		}
		hits := mentioning(t.Term, false)
		writeJSON(w, http.StatusOK, paginate(hits, req))
	})
	r.Get("/terms/{id}/passage_count", func(w http.ResponseWriter, req *http.Request) {
		n := 0
		if t, ok := findTerm(chi.URLParam(req, "id")); ok {
			n = len(mentioning(t.Term, false))
		}
		writeJSON(w, http.StatusOK, models.PassageCount{Count: n})
	})
	r.Get("/search", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query().Get("q")
		if len(q) < 2 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"detail": []map[string]string{{"msg": "String should have at least 2 characters"}},
			})
			return
		}
		exact := req.URL.Query().Get("exact") == "true"
		var terms []models.Term
		for _, t := range Terms {
			if strings.Contains(strings.ToLower(t.Term), strings.ToLower(q)) {
				terms = append(terms, t)
			}
		}
		hits := mentioning(q, exact)
		page, size := pageParams(req)
		writeJSON(w, http.StatusOK, models.SearchResults{
			Query:         q,
			Terms:         nonNil(terms),
			Passages:      paginate(hits, req),
			TotalPassages: len(hits),
			Page:          page,
			PageSize:      size,
		})
	})
	return r
}

// AllPassages returns every fixture passage in chapter order.
func AllPassages() []models.Passage {
	var out []models.Passage
	for _, n := range []int{1, 2} {
		out = append(out, ChapterData[n].Passages...)
	}
	return out
}

func mentioning(q string, exact bool) []models.Passage {
	var out []models.Passage
	for _, p := range AllPassages() {
		text := p.Text
		if !exact {
			text = strings.ToLower(text)
			q = strings.ToLower(q)
		}
		if strings.Contains(text, q) {
			p.TextSnippet = p.Text
			p.ChapterTitle = ChapterData[p.Chapter].Title
			out = append(out, p)
		}
	}
	return out
}

func findTerm(id string) (models.Term, bool) {
	i := slices.IndexFunc(Terms, func(t models.Term) bool { return t.ID == id })
	if i < 0 {
		return models.Term{}, false
	}
	return Terms[i], true
}

func workID(req *http.Request) int {
	n, _ := strconv.Atoi(req.URL.Query().Get("work_id"))
	return n
}

func pageParams(req *http.Request) (int, int) {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	return page, size
}

func paginate(ps []models.Passage, req *http.Request) []models.Passage {
	page, size := pageParams(req)
	start := (page - 1) * size
	if start >= len(ps) {
		return []models.Passage{}
	}
	return ps[start:min(start+size, len(ps))]
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func notFound(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
