// Package reader builds the views of the reading client from archive data:
// annotated chapters, tables of contents, the glossary, term pages and
// search results.
package reader

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"

	"github.com/starford/lectern/internal/annotate"
	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/archive"
	"github.com/starford/lectern/internal/models"
)

// Source is the part of the archive API the reader depends on.
type Source interface {
	ListWorks(ctx context.Context) ([]models.Work, error)
	GetWork(ctx context.Context, workID int) (*models.Work, error)
	ListChapters(ctx context.Context, workID int) ([]models.Chapter, error)
	ChapterData(ctx context.Context, workID, chapter int) (*models.ChapterData, error)
	TableOfContents(ctx context.Context, workID int) ([]models.ChapterTOC, error)
	ListTerms(ctx context.Context, workID int) ([]models.Term, error)
	GetTerm(ctx context.Context, termID string) (*models.Term, error)
	TermPassages(ctx context.Context, termID string, page, pageSize int) ([]models.Passage, error)
	TermPassageCount(ctx context.Context, termID string) (int, error)
	Search(ctx context.Context, q archive.SearchQuery) (*models.SearchResults, error)
}

// Service assembles reader views. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	src           Source
	snippetLength int
	pageSize      int
}

// Option configures a Service.
type Option func(*Service)

// WithSnippetLength sets how many runes of a passage result listings show.
func WithSnippetLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.snippetLength = n
		}
	}
}

// WithDefaultPageSize sets the page size used when a request names none.
func WithDefaultPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewService creates a reader service backed by src.
func NewService(src Source, opts ...Option) *Service {
	s := &Service{
		src:           src,
		snippetLength: DefaultSnippetLength,
		pageSize:      DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPageSize returns the page size used when a request names none.
func (s *Service) DefaultPageSize() int {
	return s.pageSize
}

// Works lists every work in the archive.
func (s *Service) Works(ctx context.Context) ([]models.Work, error) {
	works, err := s.src.ListWorks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}
	return works, nil
}

// Chapter fetches a chapter with its work and the work's chapter list, and
// annotates every passage against the chapter's terms.
func (s *Service) Chapter(ctx context.Context, workID, chapter int) (*ChapterView, error) {
	if workID < 1 || chapter < 1 {
		return nil, fmt.Errorf("%w: work %d chapter %d", apperr.ErrInvalidInput, workID, chapter)
	}

	var (
		data     *models.ChapterData
		work     *models.Work
		chapters []models.Chapter
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = s.src.ChapterData(gctx, workID, chapter)
		return err
	})
	g.Go(func() error {
		var err error
		work, err = s.src.GetWork(gctx, workID)
		return err
	})
	g.Go(func() error {
		var err error
		chapters, err = s.src.ListChapters(gctx, workID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("chapter %d of work %d: %w", chapter, workID, err)
	}

	return &ChapterView{
		WorkID:   workID,
		Work:     work,
		Number:   chapter,
		Title:    data.Title,
		Part:     data.Part,
		Prev:     data.Prev,
		Next:     data.Next,
		Chapters: nonNil(chapters),
		Sections: groupSections(data, annotate.NewMatcher(data.Terms)),
		Terms:    nonNil(data.Terms),
	}, nil
}

// groupSections splits passages into runs of consecutive passages sharing a
// section, annotating each passage with m.
func groupSections(data *models.ChapterData, m *annotate.Matcher) []SectionView {
	titles := make(map[int]string, len(data.Sections))
	for _, sec := range data.Sections {
		titles[sec.Section] = sec.Title
	}

	out := []SectionView{}
	for _, p := range data.Passages {
		n := 0
		if p.HasSection() {
			n = *p.Section
		}
		if len(out) == 0 || out[len(out)-1].Number != n {
			out = append(out, SectionView{Number: n, Title: titles[n]})
		}
		last := &out[len(out)-1]
		last.Passages = append(last.Passages, PassageView{
			ID:        p.ID,
			Paragraph: p.Paragraph,
			Segments:  m.Annotate(p.Text),
		})
	}
	return out
}

// TableOfContents returns the chapters of a work grouped by part, parts in
// the order they first appear.
func (s *Service) TableOfContents(ctx context.Context, workID int) (*TOCView, error) {
	if workID < 1 {
		return nil, fmt.Errorf("%w: work %d", apperr.ErrInvalidInput, workID)
	}

	var (
		work *models.Work
		toc  []models.ChapterTOC
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		work, err = s.src.GetWork(gctx, workID)
		return err
	})
	g.Go(func() error {
		var err error
		toc, err = s.src.TableOfContents(gctx, workID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("table of contents of work %d: %w", workID, err)
	}

	return &TOCView{Work: work, Parts: groupParts(toc)}, nil
}

func groupParts(toc []models.ChapterTOC) []PartView {
	out := []PartView{}
	index := map[int]int{}
	for _, ch := range toc {
		key := 0
		if ch.Part != nil {
			key = ch.Part.Number
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, PartView{Part: ch.Part})
		}
		out[i].Chapters = append(out[i].Chapters, ch)
	}
	return out
}

// Glossary lists the terms of a work (all works when workID is 0) whose label
// contains filter, ignoring case.
func (s *Service) Glossary(ctx context.Context, workID int, filter string) (*GlossaryView, error) {
	terms, err := s.src.ListTerms(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}

	filter = strings.TrimSpace(filter)
	out := []models.Term{}
	for _, t := range terms {
		if filter == "" || containsFold(t.Term, filter) {
			out = append(out, t)
		}
	}
	return &GlossaryView{Filter: filter, WorkID: workID, Terms: out}, nil
}

// Term fetches a term with one page of the passages that mention it. Passage
// snippets highlight the term label.
func (s *Service) Term(ctx context.Context, termID string, page Page) (*TermView, error) {
	if strings.TrimSpace(termID) == "" {
		return nil, fmt.Errorf("%w: empty term id", apperr.ErrInvalidInput)
	}
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}

	var (
		term     *models.Term
		passages []models.Passage
		count    int
		works    []models.Work
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		term, err = s.src.GetTerm(gctx, termID)
		return err
	})
	g.Go(func() error {
		var err error
		passages, err = s.src.TermPassages(gctx, termID, page.Number, page.Size)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.src.TermPassageCount(gctx, termID)
		return err
	})
	g.Go(func() error {
		var err error
		works, err = s.src.ListWorks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("term %q: %w", termID, err)
	}

	return &TermView{
		Term:       *term,
		Passages:   s.snippets(passages, term.Term, workTitles(works)),
		Pagination: NewPagination(page, count),
	}, nil
}

// Query is a full-text search request.
type Query struct {
	Text   string
	WorkID int
	Exact  bool
	Page   Page
}

// MinQueryLength is the shortest query the archive accepts.
const MinQueryLength = 2

// Validate validates the query.
func (q *Query) Validate() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Text, validation.Required, validation.RuneLength(MinQueryLength, 0)),
		validation.Field(&q.WorkID, validation.Min(0)),
		validation.Field(&q.Page),
	)
}

// Search runs a full-text search. Passage snippets are truncated and
// highlight the query.
func (s *Service) Search(ctx context.Context, q Query) (*SearchView, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Page == (Page{}) {
		q.Page = Page{Number: 1, Size: s.pageSize}
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}

	var (
		res   *models.SearchResults
		works []models.Work
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res, err = s.src.Search(gctx, archive.SearchQuery{
			Query:    q.Text,
			WorkID:   q.WorkID,
			Exact:    q.Exact,
			Page:     q.Page.Number,
			PageSize: q.Page.Size,
		})
		return err
	})
	g.Go(func() error {
		var err error
		works, err = s.src.ListWorks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Text, err)
	}

	return &SearchView{
		Query:      q.Text,
		Exact:      q.Exact,
		WorkID:     q.WorkID,
		Terms:      nonNil(res.Terms),
		Passages:   s.snippets(res.Passages, q.Text, workTitles(works)),
		Pagination: NewPagination(q.Page, res.TotalPassages),
	}, nil
}

func (s *Service) snippets(passages []models.Passage, phrase string, titles map[int]string) []SnippetView {
	out := make([]SnippetView, 0, len(passages))
	for _, p := range passages {
		out = append(out, SnippetView{
			ID:           p.ID,
			WorkID:       p.WorkID,
			WorkTitle:    titles[p.WorkID],
			Chapter:      p.Chapter,
			ChapterTitle: p.ChapterTitle,
			Section:      p.Section,
			SectionTitle: p.SectionTitle,
			Paragraph:    p.Paragraph,
			Fragments:    Highlight(Truncate(p.Snippet(), s.snippetLength), phrase),
		})
	}
	return out
}

func workTitles(works []models.Work) map[int]string {
	out := make(map[int]string, len(works))
	for _, w := range works {
		out[w.ID] = w.Title
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
