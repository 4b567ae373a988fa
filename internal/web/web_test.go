package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectern/internal/annotate"
	"github.com/starford/lectern/internal/archive"
	"github.com/starford/lectern/internal/reader"
	"github.com/starford/lectern/internal/testutil"
)

func setupRouter(t *testing.T) (chi.Router, *testutil.Archive) {
	t.Helper()
	srv := testutil.NewArchive(t)
	r, err := NewRouter(reader.NewService(archive.NewClient(srv.URL)))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return r, srv
}

func get(t *testing.T, h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q", want)
		}
	}
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestHome(t *testing.T) {
	r, _ := setupRouter(t)

	rec := get(t, r, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	assertContains(t, rec.Body.String(),
		`<a href="/works/1">Capital, Volume I</a> by Karl Marx (1867)`,
		`<a href="/works/2">Grundrisse</a>`,
		`action="/search"`,
		`class="light"`,
	)
}

func TestChapterPage(t *testing.T) {
	r, _ := setupRouter(t)

	rec := get(t, r, "/read/1/1?highlight=1-1-1-2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	assertContains(t, body,
		`<h1>Commodities</h1>`,
		`Part 1: Commodities and Money`,
		`<a class="term" href="/terms/commodity">commodities</a>.<sup class="footnote">1</sup>`,
		`<a class="term" href="/terms/surplus-value">Surplus value</a>`,
		`labour &lt;power&gt;.<sup class="footnote">2</sup>`,
		`<h2>Section 1: The Two Factors of a Commodity</h2>`,
		`<section id="section-2">`,
		`id="1-1-1-2" class="passage highlight"`,
		`id="1-1-1-1" class="passage"`,
		`href="/read/1/2">Exchange →</a>`,
	)
	if strings.Contains(body, "<power>") {
		t.Error("passage text was not escaped")
	}
	if got := cookieValue(rec, workCookie); got != "1" {
		t.Errorf("work cookie = %q, want %q", got, "1")
	}
}

func TestChapterPage_CurrentWorkKeepsCookie(t *testing.T) {
	r, _ := setupRouter(t)

	rec := get(t, r, "/read/1/2", &http.Cookie{Name: workCookie, Value: "1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := cookieValue(rec, workCookie); got != "" {
		t.Errorf("work cookie re-sent as %q", got)
	}
	if strings.Contains(rec.Body.String(), `<aside class="sections">`) {
		t.Error("sections menu rendered for a chapter without sections")
	}
}

func TestErrorPages(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		target string
		status int
		want   string
	}{
		{"/read/1/42", http.StatusNotFound, "Not found"},
		{"/read/abc/1", http.StatusBadRequest, "Bad request"},
		{"/read/1/0", http.StatusBadRequest, "Bad request"},
		{"/terms/rent", http.StatusNotFound, "Not found"},
		{"/terms/value?pageSize=7", http.StatusBadRequest, "Bad request"},
		{"/search?q=v", http.StatusBadRequest, "Bad request"},
		{"/search?q=value&work=x", http.StatusBadRequest, "Bad request"},
		{"/no/such/page", http.StatusNotFound, "Not found"},
	}
	for _, tt := range tests {
		rec := get(t, r, tt.target)
		if rec.Code != tt.status {
			t.Errorf("GET %s: status = %d, want %d", tt.target, rec.Code, tt.status)
			continue
		}
		assertContains(t, rec.Body.String(), "<h1>"+tt.want+"</h1>")
	}
}

func TestContentUnavailable(t *testing.T) {
	srv := testutil.NewFailingArchive(t)
	r, err := NewRouter(reader.NewService(archive.NewClient(srv.URL)))
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	for _, target := range []string{"/", "/read/1/1", "/terms", "/search?q=value"} {
		rec := get(t, r, target)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("GET %s: status = %d, want 502", target, rec.Code)
			continue
		}
		assertContains(t, rec.Body.String(), "<h1>Content unavailable</h1>")
		if strings.Contains(rec.Body.String(), "database is down") {
			t.Errorf("GET %s: upstream detail leaked into the page", target)
		}
	}
}

func TestTableOfContentsPage(t *testing.T) {
	r, _ := setupRouter(t)

	rec := get(t, r, "/works/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	assertContains(t, rec.Body.String(),
		`<h1>Capital, Volume I</h1>`,
		`<h2>Part 1: Commodities and Money</h2>`,
		`<h2>Part 2: The Transformation of Money into Capital</h2>`,
		`<a href="/read/1/1">Chapter 1: Commodities</a>`,
		`<a href="/read/1/1#section-1">Section 1: The Two Factors of a Commodity</a>`,
		`<a href="/works/1">Contents</a>`,
	)
	if got := cookieValue(rec, workCookie); got != "1" {
		t.Errorf("work cookie = %q, want %q", got, "1")
	}
}

func TestGlossaryPage(t *testing.T) {
	r, _ := setupRouter(t)

	rec := get(t, r, "/terms?q=SURPLUS")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	assertContains(t, body, `<a href="/terms/surplus-value">Surplus Value</a>`, `value="SURPLUS"`)
	if strings.Contains(body, `href="/terms/commodity"`) {
		t.Error("filtered glossary lists commodity")
	}
}

func TestTermPage(t *testing.T) {
	r, srv := setupRouter(t)

	rec := get(t, r, "/terms/commodity")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	assertContains(t, rec.Body.String(),
		`<h1>commodity</h1>`,
		`<strong>product</strong>`,
		`Passages (1)`,
		`<a href="/read/1/1?highlight=1-1-1-1#1-1-1-1">Paragraph 1</a>`,
		`<mark>commodity</mark>`,
		`<em>Capital, Volume I</em>`,
	)
	if strings.Contains(rec.Body.String(), `class="pagination"`) {
		t.Error("pagination shown for a single page")
	}
	if !srv.Seen("/terms/commodity/passages?page=1&page_size=10") {
		t.Errorf("passages not requested with the default page; got %v", srv.Requests())
	}
}

func TestTermPage_RawHTMLDropped(t *testing.T) {
	r, _ := setupRouter(t)

	rec := get(t, r, "/terms/value")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<i>congealed</i>") {
		t.Error("raw HTML from a definition was rendered")
	}
}

func TestSearchPage(t *testing.T) {
	r, srv := setupRouter(t)

	rec := get(t, r, "/search?q=Surplus", &http.Cookie{Name: workCookie, Value: "1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	assertContains(t, rec.Body.String(),
		`<mark>Surplus</mark> value arises from labour &lt;power&gt;.2`,
		`<a href="/terms/surplus-value">Surplus Value</a>`,
		`Passages (1)`,
	)
	if !srv.Seen("/search?page=1&page_size=10&q=Surplus&work_id=1") {
		t.Errorf("search not scoped to the current work; got %v", srv.Requests())
	}
}

func TestSearchPage_Empty(t *testing.T) {
	r, srv := setupRouter(t)

	rec := get(t, r, "/search")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	assertContains(t, rec.Body.String(), "Enter at least two characters")
	if got := srv.Requests(); len(got) != 0 {
		t.Errorf("empty search reached the archive: %v", got)
	}

	rec = get(t, r, "/search?q=rent&exact=true")
	assertContains(t, rec.Body.String(), "No results for “rent”", " checked")
}

func TestToggleTheme(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		name      string
		cookie    string
		ret       string
		wantTheme string
		wantLoc   string
	}{
		{"light to dark", "", "/read/1/1", ThemeDark, "/read/1/1"},
		{"dark to light", ThemeDark, "/terms", ThemeLight, "/terms"},
		{"foreign redirect", "", "//evil.example", ThemeDark, "/"},
		{"absolute redirect", "", "https://evil.example/", ThemeDark, "/"},
		{"missing return", "", "", ThemeDark, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"return": {tt.ret}}
			req := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: themeCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.wantLoc {
				t.Errorf("Location = %q, want %q", got, tt.wantLoc)
			}
			if got := cookieValue(rec, themeCookie); got != tt.wantTheme {
				t.Errorf("theme cookie = %q, want %q", got, tt.wantTheme)
			}
		})
	}
}

func TestDarkTheme(t *testing.T) {
	r, _ := setupRouter(t)

	rec := get(t, r, "/", &http.Cookie{Name: themeCookie, Value: ThemeDark})
	assertContains(t, rec.Body.String(), `class="dark"`, "Light mode")
}

func TestReaderContext(t *testing.T) {
	var got Context
	h := ReaderContext(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	tests := []struct {
		cookies []*http.Cookie
		want    Context
	}{
		{nil, Context{Theme: ThemeLight}},
		{[]*http.Cookie{{Name: workCookie, Value: "2"}, {Name: themeCookie, Value: ThemeDark}}, Context{CurrentWorkID: 2, Theme: ThemeDark}},
		{[]*http.Cookie{{Name: workCookie, Value: "-3"}, {Name: themeCookie, Value: "neon"}}, Context{Theme: ThemeLight}},
	}
	for _, tt := range tests {
		get(t, h, "/", tt.cookies...)
		if got != tt.want {
			t.Errorf("cookies %v: context = %+v, want %+v", tt.cookies, got, tt.want)
		}
	}
}

func TestContext_Immutable(t *testing.T) {
	c := Context{CurrentWorkID: 1, Theme: ThemeLight}
	d := c.WithWork(2).Toggled()
	if c.CurrentWorkID != 1 || c.Theme != ThemeLight {
		t.Errorf("original changed: %+v", c)
	}
	if d.CurrentWorkID != 2 || !d.Dark() {
		t.Errorf("derived = %+v, want work 2 dark", d)
	}
}

func TestRenderSegments(t *testing.T) {
	segs := []annotate.Segment{
		annotate.PlainText(`a < b & "c" `),
		annotate.TermLink("<Value>", "a b&c"),
		annotate.FootnoteMarker(12, ".12"),
	}
	got := string(renderSegments(segs))
	want := `a &lt; b &amp; &#34;c&#34; <a class="term" href="/terms/a%20b&amp;c">&lt;Value&gt;</a>.<sup class="footnote">12</sup>`
	if got != want {
		t.Errorf("renderSegments = %q, want %q", got, want)
	}
}

func TestPaginationPartial(t *testing.T) {
	tmpl, err := parseTemplates(newMarkdown())
	if err != nil {
		t.Fatalf("parseTemplates: %v", err)
	}

	var buf bytes.Buffer
	p := pager{
		Path:   "/search",
		Params: url.Values{"q": {"value"}},
		P:      reader.NewPagination(reader.Page{Number: 2, Size: 5}, 12),
	}
	if err := tmpl.ExecuteTemplate(&buf, "pagination", p); err != nil {
		t.Fatalf("ExecuteTemplate: %v", err)
	}
	assertContains(t, buf.String(),
		`href="/search?page=1&amp;pageSize=5&amp;q=value">← Previous</a>`,
		`Page <strong>2</strong> of <strong>3</strong>`,
		`href="/search?page=3&amp;pageSize=5&amp;q=value">Next →</a>`,
		`href="/search?page=1&amp;pageSize=20&amp;q=value">20 / page</a>`,
	)

	buf.Reset()
	p.P = reader.NewPagination(reader.Page{Number: 1, Size: 10}, 4)
	if err := tmpl.ExecuteTemplate(&buf, "pagination", p); err != nil {
		t.Fatalf("ExecuteTemplate: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "" {
		t.Errorf("single page pagination rendered %q", buf.String())
	}
}
