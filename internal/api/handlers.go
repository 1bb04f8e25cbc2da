package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ladle/internal/apperr"
	"github.com/starford/ladle/internal/recipesvc"
)

// Handler holds API route handlers.
type Handler struct {
	svc *recipesvc.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *recipesvc.Service) *Handler {
	return &Handler{svc: svc}
}

// LoadRecipes handles POST /recipes/load. It answers as soon as the load is
// initiated (or found unnecessary); the ingestion itself runs in the
// background.
func (h *Handler) LoadRecipes(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.LoadCatalog(r.Context())
	if err != nil {
		slog.Error("load recipes failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	writeSuccess(w, st.Message(), "Success")
}

// SearchRecipes handles POST /recipes/search.
func (h *Handler) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation failed: %v", err))
		return
	}

	recipes, tooShort, err := h.svc.Search(req.Query)
	if err != nil {
		slog.Error("search recipes failed", slog.String("query", req.Query), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	if tooShort {
		writeSuccess(w, recipes, "Query too short - minimum 3 characters required")
		return
	}
	writeSuccess(w, recipes, "Search completed successfully")
}

// GetRecipe handles GET /recipes/{id}.
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Recipe ID must be a positive integer")
		return
	}
	recipe, err := h.svc.GetByID(id)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "Recipe ID must be a positive integer")
		case errors.Is(err, apperr.ErrNotFound):
			writeError(w, http.StatusNotFound, fmt.Sprintf("Recipe not found with id: %d", id))
		default:
			slog.Error("get recipe failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
		}
		return
	}
	writeSuccess(w, recipe, "Recipe retrieved successfully")
}

// ListRecipes handles GET /recipes.
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.svc.GetAll()
	if err != nil {
		slog.Error("list recipes failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	writeSuccess(w, recipes, "All recipes retrieved successfully")
}
