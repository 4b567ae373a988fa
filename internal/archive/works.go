package archive

import (
	"context"
	"fmt"
	"net/url"

	"github.com/starford/lectern/internal/models"
)

// ListWorks returns every work in the archive.
func (c *Client) ListWorks(ctx context.Context) ([]models.Work, error) {
	var works []models.Work
	if err := c.get(ctx, "/works/", nil, &works); err != nil {
		return nil, err
	}
	return works, nil
}

// GetWork returns a single work.
func (c *Client) GetWork(ctx context.Context, workID int) (*models.Work, error) {
	var w models.Work
	if err := c.get(ctx, fmt.Sprintf("/works/%d", workID), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ListChapters returns the chapters of a work in reading order.
func (c *Client) ListChapters(ctx context.Context, workID int) ([]models.Chapter, error) {
	q := url.Values{}
	setInt(q, "work_id", workID)
	var chapters []models.Chapter
	if err := c.get(ctx, "/chapters/", q, &chapters); err != nil {
		return nil, err
	}
	return chapters, nil
}

// ChapterData returns the passages, sections, terms and navigation of one
// chapter.
func (c *Client) ChapterData(ctx context.Context, workID, chapter int) (*models.ChapterData, error) {
	q := url.Values{}
	setInt(q, "work_id", workID)
	var data models.ChapterData
	if err := c.get(ctx, fmt.Sprintf("/chapter_data/%d", chapter), q, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// TableOfContents returns the chapters of a work with their sections and
// enclosing parts.
func (c *Client) TableOfContents(ctx context.Context, workID int) ([]models.ChapterTOC, error) {
	q := url.Values{}
	setInt(q, "work_id", workID)
	var toc []models.ChapterTOC
	if err := c.get(ctx, "/chapters_with_sections", q, &toc); err != nil {
		return nil, err
	}
	return toc, nil
}
