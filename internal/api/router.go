package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/starford/lectern/internal/reader"
)

// NewRouter creates a chi router with all API routes mounted.
// allowedOrigins lists the browser origins allowed to call the API; an empty
// list allows any origin.
func NewRouter(svc *reader.Service, allowedOrigins []string) chi.Router {
	h := NewHandler(svc)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
		MaxAge:         300,
	}))
	r.Use(ETagMiddleware)

	// Works and chapters.
	r.Get("/works", h.ListWorks)
	r.Get("/works/{workID}/toc", h.TableOfContents)
	r.Get("/chapters/{workID}/{chapter}", h.GetChapter)

	// Annotation of arbitrary text.
	r.Post("/annotate", h.Annotate)

	// Glossary.
	r.Get("/terms", h.ListTerms)
	r.Get("/terms/{termID}", h.GetTerm)

	// Search.
	r.Get("/search", h.Search)

	return r
}
