package api

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lectern/internal/annotate"
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/reader"
)

// maxAnnotateText bounds the text accepted by POST /api/annotate, in bytes.
const maxAnnotateText = 1 << 20

// AnnotateRequest is the request body for annotating arbitrary text.
type AnnotateRequest struct {
	Text  string        `json:"text" example:"Surplus value arises.2" validate:"required"`
	Terms []models.Term `json:"terms"`
}

// Validate validates the request.
func (r *AnnotateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Length(0, maxAnnotateText)),
		validation.Field(&r.Terms, validation.Each(validation.By(termHasID))),
	)
}

func termHasID(v any) error {
	t, ok := v.(models.Term)
	if !ok || t.ID == "" {
		return errors.New("term id is required")
	}
	return nil
}

// AnnotateResponse carries the annotated segments.
type AnnotateResponse struct {
	Segments []annotate.Segment `json:"segments" validate:"required"`
}

// WorksResponse wraps the work catalogue.
type WorksResponse struct {
	Works []models.Work `json:"works" validate:"required"`
}

// ChapterResponse is an annotated chapter (aliased from the domain layer).
type ChapterResponse = reader.ChapterView

// TOCResponse is a table of contents (aliased from the domain layer).
type TOCResponse = reader.TOCView

// GlossaryResponse is a filtered glossary (aliased from the domain layer).
type GlossaryResponse = reader.GlossaryView

// TermResponse is a term with one page of passages (aliased from the domain layer).
type TermResponse = reader.TermView

// SearchResponse is one page of search results (aliased from the domain layer).
type SearchResponse = reader.SearchView
