package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/ladle/internal/recipesvc"
)

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *recipesvc.Service, rateLimit float64, burst int) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(RateLimit(rateLimit, burst))

	r.Route("/recipes", func(r chi.Router) {
		r.Post("/load", h.LoadRecipes)
		r.Post("/search", h.SearchRecipes)
		r.Get("/", h.ListRecipes)
		r.Get("/{id}", h.GetRecipe)
	})

	return r
}
