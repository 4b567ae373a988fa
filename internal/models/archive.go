// Package models defines the archive types shared by the client, the reader
// views and the annotator.
package models

import "strings"

// Work is a top-level text such as a book or a volume.
type Work struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Year        string `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
}

// Chapter is a chapter entry of a work.
type Chapter struct {
	ID            int    `json:"id"`
	ChapterNumber int    `json:"chapter_number"`
	Title         string `json:"title"`
	WorkID        int    `json:"work_id"`
}

// Part groups consecutive chapters of a work.
type Part struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// Section is a titled subdivision of a chapter.
type Section struct {
	ID      string `json:"id,omitempty"`
	Chapter int    `json:"chapter,omitempty"`
	Section int    `json:"section"`
	Title   string `json:"title"`
	WorkID  int    `json:"work_id,omitempty"`
}

// Passage is the smallest addressable unit of chapter text.
//
// Section and Paragraph are nil when the archive does not assign them. A
// section of -1 is used upstream for "no section" as well.
type Passage struct {
	ID           string `json:"id"`
	WorkID       int    `json:"work_id"`
	Chapter      int    `json:"chapter"`
	Section      *int   `json:"section,omitempty"`
	Paragraph    *int   `json:"paragraph,omitempty"`
	Text         string `json:"text,omitempty"`
	TextSnippet  string `json:"text_snippet,omitempty"`
	ChapterTitle string `json:"chapter_title,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
}

// HasSection reports whether the passage belongs to a numbered section.
func (p Passage) HasSection() bool {
	return p.Section != nil && *p.Section != -1
}

// Snippet returns the precomputed snippet, falling back to the full text.
func (p Passage) Snippet() string {
	if p.TextSnippet != "" {
		return p.TextSnippet
	}
	return p.Text
}

// Term is a glossary entry eligible for in-text linking.
type Term struct {
	ID         string `json:"id"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Aliases    string `json:"aliases,omitempty"`
	Tags       string `json:"tags,omitempty"`
	WorkID     int    `json:"work_id,omitempty"`
}

// Labels returns the strings that refer to the term: its label followed by
// every non-empty comma-separated alias, whitespace trimmed.
func (t Term) Labels() []string {
	var out []string
	if s := strings.TrimSpace(t.Term); s != "" {
		out = append(out, s)
	}
	for _, alias := range strings.Split(t.Aliases, ",") {
		if s := strings.TrimSpace(alias); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ChapterData is everything needed to render one chapter.
type ChapterData struct {
	Title    string    `json:"title"`
	Passages []Passage `json:"passages"`
	Sections []Section `json:"sections"`
	Terms    []Term    `json:"terms"`
	Part     *Part     `json:"part,omitempty"`
	Prev     *Chapter  `json:"prev_chapter,omitempty"`
	Next     *Chapter  `json:"next_chapter,omitempty"`
}

// ChapterTOC is a table of contents row: a chapter with its sections.
type ChapterTOC struct {
	ID            int       `json:"id"`
	ChapterNumber int       `json:"chapter_number"`
	Title         string    `json:"title"`
	Sections      []Section `json:"sections"`
	Part          *Part     `json:"part,omitempty"`
}

// Number returns the chapter number, falling back to the chapter id for
// archives that only key chapters by id.
func (c ChapterTOC) Number() int {
	if c.ChapterNumber != 0 {
		return c.ChapterNumber
	}
	return c.ID
}

// SearchResults is one page of full-text search hits.
type SearchResults struct {
	Query         string    `json:"query"`
	Terms         []Term    `json:"terms"`
	Passages      []Passage `json:"passages"`
	TotalPassages int       `json:"total_passages"`
	Page          int       `json:"page"`
	PageSize      int       `json:"page_size"`
}

// PassageCount is the number of passages linked to a term.
type PassageCount struct {
	Count int `json:"count"`
}
