package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/lectern/internal/archive"
	"github.com/starford/lectern/internal/reader"
	"github.com/starford/lectern/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	srv := testutil.NewArchive(t)
	return New(reader.NewService(archive.NewClient(srv.URL)), "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_works":
		result, err = srv.listWorks(ctx, req)
	case "table_of_contents":
		result, err = srv.tableOfContents(ctx, req)
	case "read_chapter":
		result, err = srv.readChapter(ctx, req)
	case "search":
		result, err = srv.search(ctx, req)
	case "list_terms":
		result, err = srv.listTerms(ctx, req)
	case "get_term":
		result, err = srv.getTerm(ctx, req)
	case "annotate_text":
		result, err = srv.annotateText(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListWorks(t *testing.T) {
	srv := testServer(t)

	text := resultText(callTool(t, srv, "list_works", map[string]interface{}{}))
	for _, want := range []string{`"title": "Capital, Volume I"`, `"title": "Grundrisse"`} {
		if !strings.Contains(text, want) {
			t.Errorf("list_works missing %s:\n%s", want, text)
		}
	}
}

func TestReadChapter(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_chapter", map[string]interface{}{"work": 1, "chapter": 1})
	if r.IsError {
		t.Fatalf("read_chapter failed: %s", resultText(r))
	}
	want := `# Chapter 1: Commodities

Capital, Volume I

Part 1: Commodities and Money

## Section 1: The Two Factors of a Commodity

[1-1-1-1] The wealth of those societies appears as an immense accumulation of [commodities](term:commodity).^1 Our investigation must therefore begin with the analysis of a [commodity](term:commodity).

[1-1-1-2] The [use value](term:use-value) of a thing is not its [exchange value](term:exchange-value).

## Section 2: The Twofold Character of the Labour

[1-1-2-1] [Surplus value](term:surplus-value) arises from labour <power>.^2

Next: chapter 2, Exchange
`
	if got := resultText(r); got != want {
		t.Errorf("read_chapter =\n%s\nwant\n%s", got, want)
	}
}

func TestReadChapter_Errors(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing chapter", map[string]interface{}{"work": 1}},
		{"unknown chapter", map[string]interface{}{"work": 1, "chapter": 42}},
		{"invalid work", map[string]interface{}{"work": 0, "chapter": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := callTool(t, srv, "read_chapter", tt.args); !r.IsError {
				t.Errorf("expected error, got %q", resultText(r))
			}
		})
	}
}

func TestTableOfContents(t *testing.T) {
	srv := testServer(t)

	text := resultText(callTool(t, srv, "table_of_contents", map[string]interface{}{"work": 1}))
	for _, want := range []string{
		"# Capital, Volume I\n",
		"## Part 1: Commodities and Money\n",
		"- Chapter 1: Commodities\n  - Section 1: The Two Factors of a Commodity\n",
		"## Part 2: The Transformation of Money into Capital\n- Chapter 3: Money, or the Circulation of Commodities\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("table_of_contents missing %q:\n%s", want, text)
		}
	}
}

func TestSearch(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search", map[string]interface{}{"query": "Surplus", "work": 1})
	want := `Terms:
- surplus-value (Surplus Value)

Passages:

[1-1-2-1] Capital, Volume I, chapter 1 (Commodities): **Surplus** value arises from labour <power>.2

Page 1 of 1 (1 passages, 10 per page)
`
	if got := resultText(r); got != want {
		t.Errorf("search =\n%s\nwant\n%s", got, want)
	}
}

func TestSearch_Errors(t *testing.T) {
	srv := testServer(t)

	for _, args := range []map[string]interface{}{
		{},
		{"query": "v"},
		{"query": "value", "page_size": 7},
	} {
		if r := callTool(t, srv, "search", args); !r.IsError {
			t.Errorf("search %v: expected error, got %q", args, resultText(r))
		}
	}

	r := callTool(t, srv, "search", map[string]interface{}{"query": "rent"})
	if r.IsError || resultText(r) != `No results for "rent".` {
		t.Errorf("search rent = %q", resultText(r))
	}
}

func TestListTerms(t *testing.T) {
	srv := testServer(t)

	text := resultText(callTool(t, srv, "list_terms", map[string]interface{}{"filter": "VALUE"}))
	want := "use-value: use value\nexchange-value: exchange value\nsurplus-value: Surplus Value\nvalue: value"
	if text != want {
		t.Errorf("list_terms = %q, want %q", text, want)
	}

	text = resultText(callTool(t, srv, "list_terms", map[string]interface{}{"filter": "rent"}))
	if text != "no terms found" {
		t.Errorf("list_terms rent = %q", text)
	}
}

func TestGetTerm(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_term", map[string]interface{}{"id": "value", "page_size": 5})
	if r.IsError {
		t.Fatalf("get_term failed: %s", resultText(r))
	}
	text := resultText(r)
	for _, want := range []string{
		"# value\n\nid: value\n",
		"Socially necessary labour time <i>congealed</i> in a commodity.",
		"[1-1-1-2] Capital, Volume I, chapter 1 (Commodities): The use **value** of a thing is not its exchange **value**.",
		"Page 1 of 1 (2 passages, 5 per page)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("get_term missing %q:\n%s", want, text)
		}
	}

	if r := callTool(t, srv, "get_term", map[string]interface{}{"id": "rent"}); !r.IsError {
		t.Errorf("get_term rent: expected error, got %q", resultText(r))
	}
}

func TestAnnotateText(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "annotate_text", map[string]interface{}{
		"text": "Every commodity has a use-value.3",
	})
	want := "Every [commodity](term:commodity) has a [use-value](term:use-value).^3"
	if got := resultText(r); got != want {
		t.Errorf("annotate_text = %q, want %q", got, want)
	}

	if r := callTool(t, srv, "annotate_text", map[string]interface{}{}); !r.IsError {
		t.Error("expected error for missing text")
	}
}

func TestUpstreamFailure(t *testing.T) {
	failing := testutil.NewFailingArchive(t)
	srv := New(reader.NewService(archive.NewClient(failing.URL)), "test")

	r := callTool(t, srv, "list_works", map[string]interface{}{})
	if !r.IsError || !strings.Contains(resultText(r), "database is down") {
		t.Errorf("list_works = %q, want upstream error", resultText(r))
	}
}

func TestAnnotationFormatResource(t *testing.T) {
	srv := testServer(t)

	contents, err := srv.readAnnotationFormat(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("len(contents) = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != AnnotationFormatURI || !strings.Contains(tc.Text, "(term:commodity)") {
		t.Errorf("resource = %+v", contents[0])
	}
}
