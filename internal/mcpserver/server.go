// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the archive reader to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lectern/internal/annotate"
	"github.com/starford/lectern/internal/reader"
)

// Server wraps the MCP server with the reader tools.
type Server struct {
	mcp *server.MCPServer
	svc *reader.Service
}

// New creates a new MCP server with all reader tools registered.
func New(svc *reader.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lectern",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_works",
		mcp.WithDescription("List the works available in the archive with their ids."),
	), s.listWorks)

	s.mcp.AddTool(mcp.NewTool("table_of_contents",
		mcp.WithDescription("Chapters and sections of a work, grouped by part."),
		mcp.WithNumber("work", mcp.Required(), mcp.Description("Work id from list_works")),
	), s.tableOfContents)

	s.mcp.AddTool(mcp.NewTool("read_chapter",
		mcp.WithDescription("Read a chapter. Glossary terms appear as [label](term:id) links and "+
			"footnote references as ^n markers; see the lectern://annotation-format resource."),
		mcp.WithNumber("work", mcp.Required(), mcp.Description("Work id")),
		mcp.WithNumber("chapter", mcp.Required(), mcp.Description("Chapter number")),
	), s.readChapter)

	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Full-text search over passages and glossary terms."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query, at least 2 characters")),
		mcp.WithNumber("work", mcp.Description("Restrict to one work (0 for all)")),
		mcp.WithBoolean("exact", mcp.Description("Match the exact phrase, case-sensitively")),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1")),
		mcp.WithNumber("page_size", mcp.Description("Results per page: 5, 10, 20 or 50")),
	), s.search)

	s.mcp.AddTool(mcp.NewTool("list_terms",
		mcp.WithDescription("List glossary terms, optionally filtered by label."),
		mcp.WithString("filter", mcp.Description("Case-insensitive substring of the term label")),
		mcp.WithNumber("work", mcp.Description("Restrict to one work (0 for all)")),
	), s.listTerms)

	s.mcp.AddTool(mcp.NewTool("get_term",
		mcp.WithDescription("A glossary term with its definition and the passages that mention it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Term id, as in term:id links")),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1")),
		mcp.WithNumber("page_size", mcp.Description("Passages per page: 5, 10, 20 or 50")),
	), s.getTerm)

	s.mcp.AddTool(mcp.NewTool("annotate_text",
		mcp.WithDescription("Annotate arbitrary text against the glossary of a work, "+
			"using the same notation as read_chapter."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to annotate")),
		mcp.WithNumber("work", mcp.Description("Work whose glossary to use (0 for all)")),
	), s.annotateText)

	s.mcp.AddResource(
		mcp.NewResource(AnnotationFormatURI, "Annotation Format",
			mcp.WithResourceDescription("Notation for term links and footnote markers in chapter text."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readAnnotationFormat,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listWorks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	works, err := s.svc.Works(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(works, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) tableOfContents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	work, err := req.RequireInt("work")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.TableOfContents(ctx, work)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTOC(view)), nil
}

func (s *Server) readChapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	work, err := req.RequireInt("work")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chapter, err := req.RequireInt("chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.Chapter(ctx, work, chapter)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatChapter(view)), nil
}

func (s *Server) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.Search(ctx, reader.Query{
		Text:   query,
		WorkID: req.GetInt("work", 0),
		Exact:  req.GetBool("exact", false),
		Page:   s.page(req),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSearch(view)), nil
}

func (s *Server) listTerms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := s.svc.Glossary(ctx, req.GetInt("work", 0), req.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(view.Terms) == 0 {
		return mcp.NewToolResultText("no terms found"), nil
	}
	lines := make([]string, 0, len(view.Terms))
	for _, t := range view.Terms {
		lines = append(lines, fmt.Sprintf("%s: %s", t.ID, t.Term))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getTerm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.Term(ctx, id, s.page(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTerm(view)), nil
}

func (s *Server) annotateText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	glossary, err := s.svc.Glossary(ctx, req.GetInt("work", 0), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	formatSegments(&b, annotate.Annotate(text, glossary.Terms))
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) readAnnotationFormat(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      AnnotationFormatURI,
			MIMEType: "text/markdown",
			Text:     AnnotationFormat,
		},
	}, nil
}

// page reads the optional paging arguments of a tool call.
func (s *Server) page(req mcp.CallToolRequest) reader.Page {
	return reader.Page{
		Number: req.GetInt("page", 1),
		Size:   req.GetInt("page_size", s.svc.DefaultPageSize()),
	}
}
