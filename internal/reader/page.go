package reader

import (
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lectern/internal/apperr"
)

// DefaultPageSize is used when a request names no page size.
const DefaultPageSize = 10

// PageSizes are the page sizes a reader may pick.
var PageSizes = []int{5, 10, 20, 50}

// Page selects one page of a paginated listing.
type Page struct {
	Number int
	Size   int
}

// Validate validates the page selection.
func (p Page) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Number, validation.Required, validation.Min(1)),
		validation.Field(&p.Size, validation.Required, validation.In(5, 10, 20, 50)),
	)
}

// ParsePage builds a Page from raw query values. Empty values take the
// defaults; anything else must be a valid page.
func ParsePage(number, size string, defaultSize int) (Page, error) {
	p := Page{Number: 1, Size: defaultSize}
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
	if number != "" {
		n, err := strconv.Atoi(number)
		if err != nil {
			return Page{}, fmt.Errorf("%w: page %q is not a number", apperr.ErrInvalidInput, number)
		}
		p.Number = n
	}
	if size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return Page{}, fmt.Errorf("%w: page size %q is not a number", apperr.ErrInvalidInput, size)
		}
		p.Size = n
	}
	if err := p.Validate(); err != nil {
		return Page{}, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return p, nil
}

// Pagination describes the navigation controls of a paginated listing.
type Pagination struct {
	Page       int `json:"page"`
	Size       int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination for total items shown size at a time.
func NewPagination(p Page, total int) Pagination {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return Pagination{Page: p.Number, Size: p.Size, Total: total, TotalPages: pages}
}

// Visible reports whether navigation controls are worth showing.
func (p Pagination) Visible() bool { return p.TotalPages > 1 }

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// Prev returns the previous page number.
func (p Pagination) Prev() int { return p.Page - 1 }

// Next returns the following page number.
func (p Pagination) Next() int { return p.Page + 1 }

// Pages lists every page number, for a jump-to-page menu.
func (p Pagination) Pages() []int {
	out := make([]int, p.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Sizes lists the page sizes a reader may switch to.
func (p Pagination) Sizes() []int { return PageSizes }
