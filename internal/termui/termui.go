// Package termui prints reader views to a terminal: lists as aligned tables,
// chapters as plain annotated text.
package termui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/k3a/html2text"
	"github.com/rodaine/table"

	"github.com/starford/lectern/internal/annotate"
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/reader"
)

// Segments renders annotated text with term links as label[id] and
// footnotes as ^n after the period.
func Segments(segs []annotate.Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case annotate.KindTerm:
			b.WriteString(seg.Text + "[" + seg.TermID + "]")
		case annotate.KindFootnote:
			b.WriteString(".^" + strconv.Itoa(seg.Footnote))
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// Definition converts an HTML or Markdown definition to plain text.
func Definition(s string) string {
	return strings.TrimSpace(html2text.HTML2TextWithOptions(s, html2text.WithUnixLineBreaks()))
}

func newTable(w io.Writer, headers ...interface{}) table.Table {
	return table.New(headers...).WithWriter(w)
}

// Works prints the work catalogue.
func Works(w io.Writer, works []models.Work) {
	tbl := newTable(w, "ID", "Title", "Author", "Year")
	for _, wk := range works {
		tbl.AddRow(wk.ID, wk.Title, wk.Author, wk.Year)
	}
	tbl.Print()
}

// TableOfContents prints the chapters of a work grouped by part.
func TableOfContents(w io.Writer, v *reader.TOCView) {
	if v.Work != nil {
		fmt.Fprintf(w, "%s\n\n", v.Work.Title)
	}
	tbl := newTable(w, "Part", "Chapter", "Title", "Sections")
	for _, part := range v.Parts {
		label := ""
		if part.Part != nil {
			label = strconv.Itoa(part.Part.Number)
		}
		for _, ch := range part.Chapters {
			tbl.AddRow(label, ch.Number(), ch.Title, len(ch.Sections))
		}
	}
	tbl.Print()
}

// Chapter prints an annotated chapter with its section headings.
func Chapter(w io.Writer, v *reader.ChapterView) {
	if v.Work != nil {
		fmt.Fprintf(w, "%s\n", v.Work.Title)
	}
	if v.Part != nil {
		fmt.Fprintf(w, "Part %d: %s\n", v.Part.Number, v.Part.Title)
	}
	fmt.Fprintf(w, "Chapter %d: %s\n", v.Number, v.Title)
	for _, sec := range v.Sections {
		if h := sec.Heading(); h != "" {
			fmt.Fprintf(w, "\n%s\n%s\n", h, strings.Repeat("-", len([]rune(h))))
		}
		for _, p := range sec.Passages {
			fmt.Fprintf(w, "\n%s\n", Segments(p.Segments))
		}
	}
	if v.Prev != nil || v.Next != nil {
		fmt.Fprintln(w)
	}
	if v.Prev != nil {
		fmt.Fprintf(w, "< %d. %s\n", v.Prev.ChapterNumber, v.Prev.Title)
	}
	if v.Next != nil {
		fmt.Fprintf(w, "> %d. %s\n", v.Next.ChapterNumber, v.Next.Title)
	}
}

// Terms prints glossary terms.
func Terms(w io.Writer, terms []models.Term) {
	if len(terms) == 0 {
		fmt.Fprintln(w, "No terms found.")
		return
	}
	tbl := newTable(w, "ID", "Term", "Aliases")
	for _, t := range terms {
		tbl.AddRow(t.ID, t.Term, t.Aliases)
	}
	tbl.Print()
}

// Term prints a term definition followed by one page of passages.
func Term(w io.Writer, v *reader.TermView) {
	fmt.Fprintf(w, "%s\n", v.Term.Term)
	if v.Term.Aliases != "" {
		fmt.Fprintf(w, "Also: %s\n", v.Term.Aliases)
	}
	if d := Definition(v.Term.Definition); d != "" {
		fmt.Fprintf(w, "\n%s\n", d)
	}
	if len(v.Passages) > 0 {
		fmt.Fprintln(w)
		snippets(w, v.Passages)
		pagination(w, v.Pagination)
	}
}

// Search prints one page of search results.
func Search(w io.Writer, v *reader.SearchView) {
	if v.Empty() {
		fmt.Fprintf(w, "No results for %q.\n", v.Query)
		return
	}
	if len(v.Terms) > 0 {
		fmt.Fprintln(w, "Terms")
		Terms(w, v.Terms)
	}
	if len(v.Passages) > 0 {
		if len(v.Terms) > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, "Passages")
		snippets(w, v.Passages)
		pagination(w, v.Pagination)
	}
}

func snippets(w io.Writer, passages []reader.SnippetView) {
	tbl := newTable(w, "Passage", "Work", "Chapter", "Text")
	for _, s := range passages {
		tbl.AddRow(s.ID, s.WorkTitle, s.Chapter, s.Text())
	}
	tbl.Print()
}

func pagination(w io.Writer, p reader.Pagination) {
	if p.Visible() {
		fmt.Fprintf(w, "\nPage %d of %d (%d passages)\n", p.Page, p.TotalPages, p.Total)
	}
}
