package reader

import (
	"fmt"
	"strings"

	"github.com/starford/lectern/internal/annotate"
	"github.com/starford/lectern/internal/models"
)

// ChapterView is an annotated chapter ready to render.
type ChapterView struct {
	WorkID   int              `json:"work_id"`
	Work     *models.Work     `json:"work,omitempty"`
	Number   int              `json:"chapter"`
	Title    string           `json:"title"`
	Part     *models.Part     `json:"part,omitempty"`
	Prev     *models.Chapter  `json:"prev_chapter,omitempty"`
	Next     *models.Chapter  `json:"next_chapter,omitempty"`
	Chapters []models.Chapter `json:"chapters"`
	Sections []SectionView    `json:"sections"`
	Terms    []models.Term    `json:"terms"`
}

// Named reports whether any group of the chapter is a numbered section.
func (v *ChapterView) Named() bool {
	for _, s := range v.Sections {
		if s.Number != 0 {
			return true
		}
	}
	return false
}

// SectionView is a run of consecutive passages sharing one section.
// Number is 0 for passages outside any section.
type SectionView struct {
	Number   int           `json:"section,omitempty"`
	Title    string        `json:"title,omitempty"`
	Passages []PassageView `json:"passages"`
}

// Heading returns "Section N: Title", "Section N" when untitled, or "" for
// passages outside any section.
func (s SectionView) Heading() string {
	switch {
	case s.Number == 0:
		return ""
	case s.Title == "":
		return fmt.Sprintf("Section %d", s.Number)
	default:
		return fmt.Sprintf("Section %d: %s", s.Number, s.Title)
	}
}

// Anchor returns the fragment id of the section within the chapter page.
func (s SectionView) Anchor() string {
	if s.Number == 0 {
		return "section-none"
	}
	return fmt.Sprintf("section-%d", s.Number)
}

// PassageView is one annotated passage.
type PassageView struct {
	ID        string             `json:"id"`
	Paragraph *int               `json:"paragraph,omitempty"`
	Segments  []annotate.Segment `json:"segments"`
}

// TOCView is the table of contents of a work.
type TOCView struct {
	Work  *models.Work `json:"work,omitempty"`
	Parts []PartView   `json:"parts"`
}

// PartView groups chapters under a part. Part is nil for chapters outside
// any part.
type PartView struct {
	Part     *models.Part        `json:"part,omitempty"`
	Chapters []models.ChapterTOC `json:"chapters"`
}

// Heading returns "Part N: Title", or "" for chapters outside any part.
func (p PartView) Heading() string {
	if p.Part == nil {
		return ""
	}
	return fmt.Sprintf("Part %d: %s", p.Part.Number, p.Part.Title)
}

// GlossaryView is a filtered glossary.
type GlossaryView struct {
	Filter string        `json:"filter,omitempty"`
	WorkID int           `json:"work_id,omitempty"`
	Terms  []models.Term `json:"terms"`
}

// TermView is a term with one page of the passages that mention it.
type TermView struct {
	Term       models.Term   `json:"term"`
	Passages   []SnippetView `json:"passages"`
	Pagination Pagination    `json:"pagination"`
}

// SnippetView is a truncated, highlighted passage in a result listing.
type SnippetView struct {
	ID           string     `json:"id"`
	WorkID       int        `json:"work_id"`
	WorkTitle    string     `json:"work_title,omitempty"`
	Chapter      int        `json:"chapter"`
	ChapterTitle string     `json:"chapter_title,omitempty"`
	Section      *int       `json:"section,omitempty"`
	SectionTitle string     `json:"section_title,omitempty"`
	Paragraph    *int       `json:"paragraph,omitempty"`
	Fragments    []Fragment `json:"fragments"`
}

// Text returns the snippet text without highlighting.
func (s SnippetView) Text() string {
	var b strings.Builder
	for _, f := range s.Fragments {
		b.WriteString(f.Text)
	}
	return b.String()
}

// SearchView is one page of search results.
type SearchView struct {
	Query      string        `json:"query"`
	Exact      bool          `json:"exact,omitempty"`
	WorkID     int           `json:"work_id,omitempty"`
	Terms      []models.Term `json:"terms"`
	Passages   []SnippetView `json:"passages"`
	Pagination Pagination    `json:"pagination"`
}

// Empty reports whether the search found nothing at all.
func (v *SearchView) Empty() bool {
	return len(v.Terms) == 0 && len(v.Passages) == 0
}
