package archive

import (
	"context"
	"net/url"

	"github.com/starford/lectern/internal/models"
)

// ListTerms returns glossary terms, restricted to a work when workID > 0.
func (c *Client) ListTerms(ctx context.Context, workID int) ([]models.Term, error) {
	q := url.Values{}
	setInt(q, "work_id", workID)
	var terms []models.Term
	if err := c.get(ctx, "/terms/", q, &terms); err != nil {
		return nil, err
	}
	return terms, nil
}

// GetTerm returns a single glossary term.
func (c *Client) GetTerm(ctx context.Context, termID string) (*models.Term, error) {
	var t models.Term
	if err := c.get(ctx, "/terms/"+url.PathEscape(termID), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// TermPassages returns one page of passages that mention a term.
func (c *Client) TermPassages(ctx context.Context, termID string, page, pageSize int) ([]models.Passage, error) {
	q := url.Values{}
	setInt(q, "page", page)
	setInt(q, "page_size", pageSize)
	var passages []models.Passage
	if err := c.get(ctx, "/terms/"+url.PathEscape(termID)+"/passages", q, &passages); err != nil {
		return nil, err
	}
	return passages, nil
}

// TermPassageCount returns how many passages mention a term.
func (c *Client) TermPassageCount(ctx context.Context, termID string) (int, error) {
	var pc models.PassageCount
	if err := c.get(ctx, "/terms/"+url.PathEscape(termID)+"/passage_count", nil, &pc); err != nil {
		return 0, err
	}
	return pc.Count, nil
}
