// Package recipesvc coordinates catalog ingestion and read access for the
// API and MCP layers.
package recipesvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ladle/internal/apperr"
	"github.com/starford/ladle/internal/index"
	"github.com/starford/ladle/internal/models"
	"github.com/starford/ladle/internal/upstream"
)

// MinQueryLength is the shortest search query the facade forwards to the
// index; anything shorter (after trimming) yields an empty result set.
const MinQueryLength = 3

// Store is the recipe storage the service depends on.
type Store interface {
	Count() (int, error)
	InsertAll(recipes []models.Recipe) ([]models.Recipe, error)
	FindByID(id int64) (*models.Recipe, error)
	FindByIDs(ids []int64) ([]models.Recipe, error)
	FindAll() ([]models.Recipe, error)
}

// Fetcher is the external catalog client the ingestion pipeline calls.
type Fetcher interface {
	FetchAll(ctx context.Context) (*upstream.CatalogPage, error)
	InvalidateCache()
}

// LoadStatus is the immediate outcome of a LoadCatalog call. The heavy work
// runs in the background and is never awaited by the caller.
type LoadStatus int

// LoadCatalog outcomes.
const (
	LoadInitiated LoadStatus = iota
	LoadAlreadyLoaded
	LoadInProgress
)

// Message returns the user-facing description of the status.
func (s LoadStatus) Message() string {
	switch s {
	case LoadInitiated:
		return "Recipe loading initiated successfully"
	case LoadAlreadyLoaded:
		return "Recipes already loaded"
	case LoadInProgress:
		return "Recipe loading already in progress"
	default:
		return "Unknown load status"
	}
}

// Service coordinates the store, search index, and upstream fetcher.
type Service struct {
	store   Store
	index   index.RecipeIndex
	fetcher Fetcher
	logger  *slog.Logger

	loading atomic.Bool // ingestion in-flight guard
}

// NewService creates a new recipe service.
func NewService(store Store, idx index.RecipeIndex, fetcher Fetcher, logger *slog.Logger) *Service {
	return &Service{store: store, index: idx, fetcher: fetcher, logger: logger}
}

// LoadCatalog starts a one-time bulk load of the catalog into an empty
// store. It returns immediately; fetch, transform, persist, and reindex run
// in the background and their failures are logged, never surfaced here.
// Concurrent calls racing on an empty store are serialized by an in-flight
// guard, so at most one ingestion runs at a time.
func (s *Service) LoadCatalog(ctx context.Context) (LoadStatus, error) {
	n, err := s.store.Count()
	if err != nil {
		return 0, fmt.Errorf("recipesvc: count: %w", err)
	}
	if n > 0 {
		return LoadAlreadyLoaded, nil
	}
	if !s.loading.CompareAndSwap(false, true) {
		return LoadInProgress, nil
	}

	go s.ingest()
	return LoadInitiated, nil
}

// ingest runs the fetch -> transform -> persist -> reindex pipeline. It owns
// the loading flag and uses a background context: the original caller has
// already been answered.
func (s *Service) ingest() {
	defer s.loading.Store(false)

	logger := s.logger.With(slog.String("job_id", uuid.NewString()))
	start := time.Now()

	// The emptiness check in LoadCatalog ran before this goroutine held the
	// guard; re-check under it so a load finishing concurrently cannot be
	// duplicated.
	n, err := s.store.Count()
	if err != nil {
		logger.Error("ingestion aborted", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		logger.Info("recipes already loaded, skipping ingestion")
		return
	}

	page, err := s.fetcher.FetchAll(context.Background())
	if err != nil {
		logger.Error("fetch failed", slog.String("error", err.Error()))
		return
	}
	if len(page.Recipes) == 0 {
		logger.Warn("upstream returned no recipes, nothing to load")
		return
	}

	inserted, err := s.store.InsertAll(transform(page.Recipes))
	if err != nil {
		logger.Error("bulk insert failed", slog.String("error", err.Error()))
		return
	}

	if err := s.reindex(); err != nil {
		// Records stay persisted; the prior index snapshot stays live.
		logger.Error("index rebuild failed, prior index retained", slog.String("error", err.Error()))
		return
	}

	loadDuration.Observe(time.Since(start).Seconds())
	recipesLoaded.Add(float64(len(inserted)))
	logger.Info("catalog loaded",
		slog.Int("recipes", len(inserted)),
		slog.Duration("took", time.Since(start)))
}

// reindex rebuilds the search index from a full store snapshot.
func (s *Service) reindex() error {
	recipes, err := s.store.FindAll()
	if err != nil {
		return fmt.Errorf("recipesvc: scan store for reindex: %w", err)
	}
	s.index.Rebuild(recipes)
	return nil
}

// transform maps external records to local recipes: the external id is
// dropped (ids are re-minted at persistence time) and absent collections
// default to empty.
func transform(records []upstream.ExternalRecipe) []models.Recipe {
	out := make([]models.Recipe, len(records))
	for i, r := range records {
		out[i] = models.Recipe{
			Name:            r.Name,
			Cuisine:         r.Cuisine,
			Ingredients:     orEmpty(r.Ingredients),
			Instructions:    orEmpty(r.Instructions),
			Tags:            orEmpty(r.Tags),
			CookTimeMinutes: r.CookTimeMinutes,
			Image:           r.Image,
		}
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// GetByID returns the recipe with the given id. Non-positive ids are
// rejected before reaching the store.
func (s *Service) GetByID(id int64) (*models.Recipe, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: recipe id must be positive", apperr.ErrInvalidArgument)
	}
	return s.store.FindByID(id)
}

// GetAll returns every recipe, fully materialized.
func (s *Service) GetAll() ([]models.Recipe, error) {
	return s.store.FindAll()
}

// Search returns recipes whose name or cuisine contains the trimmed query,
// case-insensitively. tooShort is true when the trimmed query is shorter
// than MinQueryLength; in that case the index is not consulted and the
// result set is empty. This is a soft validation outcome, not an error.
func (s *Service) Search(query string) (recipes []models.Recipe, tooShort bool, err error) {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < MinQueryLength {
		return []models.Recipe{}, true, nil
	}
	ids := s.index.Search(trimmed)
	recipes, err = s.store.FindByIDs(ids)
	if err != nil {
		return nil, false, fmt.Errorf("recipesvc: materialize search results: %w", err)
	}
	return recipes, false, nil
}

// InvalidateCatalogCache clears the fetcher's cached catalog page.
func (s *Service) InvalidateCatalogCache() {
	s.fetcher.InvalidateCache()
}
