package mcpserver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/lectern/internal/annotate"
	"github.com/starford/lectern/internal/reader"
)

// formatSegments writes segments in the notation described by
// AnnotationFormat.
func formatSegments(b *strings.Builder, segs []annotate.Segment) {
	for _, seg := range segs {
		switch seg.Kind {
		case annotate.KindTerm:
			fmt.Fprintf(b, "[%s](term:%s)", seg.Text, seg.TermID)
		case annotate.KindFootnote:
			b.WriteString(".^")
			b.WriteString(strconv.Itoa(seg.Footnote))
		default:
			b.WriteString(seg.Text)
		}
	}
}

func formatChapter(v *reader.ChapterView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Chapter %d: %s\n", v.Number, v.Title)
	if v.Work != nil {
		fmt.Fprintf(&b, "\n%s\n", v.Work.Title)
	}
	if v.Part != nil {
		fmt.Fprintf(&b, "\nPart %d: %s\n", v.Part.Number, v.Part.Title)
	}
	for _, sec := range v.Sections {
		if h := sec.Heading(); h != "" {
			fmt.Fprintf(&b, "\n## %s\n", h)
		}
		for _, p := range sec.Passages {
			fmt.Fprintf(&b, "\n[%s] ", p.ID)
			formatSegments(&b, p.Segments)
			b.WriteString("\n")
		}
	}
	if v.Prev != nil {
		fmt.Fprintf(&b, "\nPrevious: chapter %d, %s", v.Prev.ChapterNumber, v.Prev.Title)
	}
	if v.Next != nil {
		fmt.Fprintf(&b, "\nNext: chapter %d, %s", v.Next.ChapterNumber, v.Next.Title)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func formatTOC(v *reader.TOCView) string {
	var b strings.Builder
	if v.Work != nil {
		fmt.Fprintf(&b, "# %s\n", v.Work.Title)
	}
	for _, part := range v.Parts {
		if h := part.Heading(); h != "" {
			fmt.Fprintf(&b, "\n## %s\n", h)
		} else {
			b.WriteString("\n")
		}
		for _, ch := range part.Chapters {
			fmt.Fprintf(&b, "- Chapter %d: %s\n", ch.Number(), ch.Title)
			for _, sec := range ch.Sections {
				fmt.Fprintf(&b, "  - Section %d: %s\n", sec.Section, sec.Title)
			}
		}
	}
	return b.String()
}

// formatSnippets lists snippets with highlighted matches in bold.
func formatSnippets(b *strings.Builder, snippets []reader.SnippetView) {
	for _, s := range snippets {
		fmt.Fprintf(b, "\n[%s] ", s.ID)
		if s.WorkTitle != "" {
			fmt.Fprintf(b, "%s, ", s.WorkTitle)
		}
		fmt.Fprintf(b, "chapter %d", s.Chapter)
		if s.ChapterTitle != "" {
			fmt.Fprintf(b, " (%s)", s.ChapterTitle)
		}
		b.WriteString(": ")
		for _, f := range s.Fragments {
			if f.Mark {
				b.WriteString("**" + f.Text + "**")
			} else {
				b.WriteString(f.Text)
			}
		}
		b.WriteString("\n")
	}
}

func formatPagination(b *strings.Builder, p reader.Pagination) {
	fmt.Fprintf(b, "\nPage %d of %d (%d passages, %d per page)\n", p.Page, max(p.TotalPages, 1), p.Total, p.Size)
}

func formatSearch(v *reader.SearchView) string {
	if v.Empty() {
		return fmt.Sprintf("No results for %q.", v.Query)
	}
	var b strings.Builder
	if len(v.Terms) > 0 {
		b.WriteString("Terms:\n")
		for _, t := range v.Terms {
			fmt.Fprintf(&b, "- %s (%s)\n", t.ID, t.Term)
		}
	}
	if len(v.Passages) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Passages:\n")
		formatSnippets(&b, v.Passages)
	}
	formatPagination(&b, v.Pagination)
	return b.String()
}

func formatTerm(v *reader.TermView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\nid: %s\n", v.Term.Term, v.Term.ID)
	if v.Term.Aliases != "" {
		fmt.Fprintf(&b, "aliases: %s\n", v.Term.Aliases)
	}
	if d := strings.TrimSpace(v.Term.Definition); d != "" {
		fmt.Fprintf(&b, "\n%s\n", d)
	}
	if len(v.Passages) > 0 {
		b.WriteString("\n## Passages\n")
		formatSnippets(&b, v.Passages)
		formatPagination(&b, v.Pagination)
	}
	return b.String()
}
