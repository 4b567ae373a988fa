package archive

import (
	"context"
	"net/url"

	"github.com/starford/lectern/internal/models"
)

// SearchQuery describes a full-text search request.
type SearchQuery struct {
	Query string
	// WorkID restricts results to one work when > 0.
	WorkID int
	// Exact requires literal substring matches instead of fuzzy ones.
	Exact    bool
	Page     int
	PageSize int
}

// Search runs a full-text search over passages and glossary terms.
func (c *Client) Search(ctx context.Context, sq SearchQuery) (*models.SearchResults, error) {
	q := url.Values{}
	q.Set("q", sq.Query)
	setInt(q, "work_id", sq.WorkID)
	if sq.Exact {
		q.Set("exact", "true")
	}
	setInt(q, "page", sq.Page)
	setInt(q, "page_size", sq.PageSize)

	var res models.SearchResults
	if err := c.get(ctx, "/search", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
